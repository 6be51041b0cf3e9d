package web

import (
	"embed"
	"io/fs"
)

//go:embed *.html
var files embed.FS

// FS provides access to the embedded page templates
var FS fs.FS = files
