package core

import (
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Date & time layouts
const (
	DateLayout        = "2006-01-02"
	DisplayDateLayout = "02-01-2006"
	ClockLayout       = "15:04"
	ClockSecLayout    = "15:04:05"
)

var (
	NowFunc = time.Now // mockable

	VideoExtensions    = []string{"mp4", "mkv", "webm"}
	MaterialExtensions = []string{"pdf", "docx", "pptx", "ppt", "zip", "txt", "jpg", "jpeg", "png"}

	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Today returns the calendar date of NowFunc, in the server's zone, as midnight UTC.
func Today() time.Time {
	y, m, d := NowFunc().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, CleanString(s))
}

// ParseClock parses a HH:MM time of day and returns it as HH:MM:SS.
// When withSeconds is set, HH:MM:SS is accepted as well.
func ParseClock(s string, withSeconds bool) (string, error) {
	s = CleanString(s)
	t, err := time.Parse(ClockLayout, s)
	if err != nil && withSeconds {
		t, err = time.Parse(ClockSecLayout, s)
	}
	if err != nil {
		return "", err
	}
	return t.Format(ClockSecLayout), nil
}

func FormatDisplayDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}

// SecureFilename returns a filename safe to store on any filesystem: path components are dropped,
// non-ASCII characters removed and whitespace replaced by underscores.
// The result may be empty.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}

	name = strings.Join(strings.FieldsFunc(name, unicode.IsSpace), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// HasExtension does a case-insensitive match of the filename suffix against `exts`.
func HasExtension(filename string, exts []string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	ext := strings.ToLower(filename[i+1:])
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
