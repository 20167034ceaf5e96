// Package render provides the best-effort HTML preview for RENDER?: a
// thin wrapper over goldmark, never on the edit path and never able to
// fail a command.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// HTML converts the flattened document content to an HTML preview. A
// conversion error yields an empty string; callers log it and move on,
// per §4.8's best-effort contract.
func HTML(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(content, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
