package appfs

import "embed"

// FS holds the SQL migrations and the email templates.
//go:embed migrations templates templates/email/_base.txt templates/email/_base.gohtml
var FS embed.FS
