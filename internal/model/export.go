package model

import "regexp"

// ExportResult is a downloadable artifact.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileSafe collapses every whitespace run in s to a single underscore.
func FileSafe(s string) string {
	return whitespaceRun.ReplaceAllString(s, "_")
}
