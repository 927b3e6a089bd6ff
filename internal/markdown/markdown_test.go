package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Strong(t *testing.T) {
	assert.Equal(t, "\x1b[1mhello\x1b[0m world", Render("**hello** world"))
}

func TestRender_Emphasis(t *testing.T) {
	assert.Equal(t, "\x1b[3mhi\x1b[0m", Render("*hi*"))
}

func TestRender_Heading(t *testing.T) {
	out := Render("# Subject\n\nBody text")
	assert.Contains(t, out, "\x1b[1mSubject\x1b[0m")
	assert.Contains(t, out, "Body text")
	assert.True(t, strings.Index(out, "Subject") < strings.Index(out, "Body text"))
}

func TestRender_List(t *testing.T) {
	out := Render("- first\n- second")
	assert.Contains(t, out, "• first")
	assert.Contains(t, out, "• second")
}

func TestRender_InlineCode(t *testing.T) {
	assert.Contains(t, Render("run `go test` now"), "`go test`")
}

func TestRender_PlainTextPassesThrough(t *testing.T) {
	assert.Equal(t, "just a sentence", Render("just a sentence"))
}

func TestRender_Link(t *testing.T) {
	out := Render("see [the docs](https://example.com)")
	assert.Contains(t, out, "the docs")
	assert.Contains(t, out, "<https://example.com>")
}

func TestStrip_RemovesANSI(t *testing.T) {
	out := Strip("**Dear Alice**, see *attached*")
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "Dear Alice")
	assert.Contains(t, out, "attached")
}

func TestRender_EmptyInput(t *testing.T) {
	assert.Equal(t, "", Render(""))
}
