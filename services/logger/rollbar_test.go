package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
)

func Test_splitArgs(t *testing.T) {
	tchr := account.Identity{Role: account.RoleTeacher, ID: 7}
	std := account.Identity{Role: account.RoleStudent, ID: 3}
	extra := map[string]interface{}{"path": "/teacher/classes"}

	tests := []struct {
		name       string
		args       []interface{}
		wantWho    account.Identity
		wantExtras []interface{}
	}{
		{name: "nothing", wantExtras: []interface{}{}},
		{name: "extras only", args: []interface{}{extra}, wantExtras: []interface{}{extra}},
		{name: "first identity wins", args: []interface{}{tchr, extra, std}, wantWho: tchr, wantExtras: []interface{}{extra}},
		{name: "anonymous identity", args: []interface{}{account.Identity{}, extra}, wantExtras: []interface{}{extra}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			who, extras := splitArgs(tt.args)
			assert.Equal(t, tt.wantWho, who)
			assert.Equal(t, tt.wantExtras, extras)
		})
	}
}

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "test"})
	logger.Enable(false)

	logger.Error("saving video", map[string]interface{}{"bucket": "videos"}, account.Identity{Role: account.RoleTeacher, ID: 7})
	logger.Info("Application stopped")

	assert.Equal(t, "[error] saving video (teacher:7)\nmap[bucket:videos]\n[info] Application stopped\n", buf.String())
}
