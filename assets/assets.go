// Package assets embeds the static files shipped with the binaries.
package assets

import "embed"

// EmailTemplatesDir is the FS directory holding the email templates.
const EmailTemplatesDir = "templates/email"

//go:embed all:templates
var FS embed.FS
