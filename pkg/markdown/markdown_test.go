package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSafeHTML(t *testing.T) {
	out := ToSafeHTML("Hello **world**")
	assert.Contains(t, out, "<strong>world</strong>")
}

func TestToSafeHTMLStripsScripts(t *testing.T) {
	out := ToSafeHTML("before <script>alert('xss')</script> after")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "alert")
}

func TestToSafeHTMLTables(t *testing.T) {
	out := ToSafeHTML("| a | b |\n|---|---|\n| 1 | 2 |")
	assert.Contains(t, out, "<table>")
}
