package render_test

import (
	"strings"
	"testing"

	"github.com/joeycumines/collabmd/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLRendersHeading(t *testing.T) {
	html, err := render.HTML([]byte("# Title\n"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "<h1>Title</h1>"))
}

func TestHTMLRendersEmptyDocument(t *testing.T) {
	html, err := render.HTML(nil)
	require.NoError(t, err)
	assert.Equal(t, "", html)
}
