package assets

import "embed"

//go:embed templates/*.html copy/*.md
var assetsFS embed.FS

// GetTemplate returns the bytes of an embedded HTML template.
func GetTemplate(filename string) ([]byte, error) {
	return assetsFS.ReadFile("templates/" + filename)
}

// GetCopy returns the Markdown source of an embedded copy block.
func GetCopy(filename string) ([]byte, error) {
	return assetsFS.ReadFile("copy/" + filename)
}
