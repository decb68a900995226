// Package web holds the static pages served to browsers.
package web

import "embed"

//go:embed *.html
var Pages embed.FS
