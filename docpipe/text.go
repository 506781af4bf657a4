package docpipe

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// ReadText returns the content of a plain text or markdown file unchanged.
// Markdown is not rendered; the model receives it as written.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: not valid UTF-8 text", path)
	}
	return string(data), nil
}
