package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	// Given: a writer with a buffer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing a status message
	w.Status("🔍", "Resolving tbdex...")

	// Then: output contains icon and message
	assert.Equal(t, "🔍 Resolving tbdex...\n", buf.String())
}

func TestWriter_Status_NoIconIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Status("", "detail")
	assert.Equal(t, "   detail\n", buf.String())
}

func TestWriter_Levels(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		icon  string
		text  string
	}{
		{"success", func(w *Writer) { w.Successf("loaded %s", "tbdex") }, "✅", "loaded tbdex"},
		{"warning", func(w *Writer) { w.Warningf("override from %s", ".env") }, "⚠️", "override from .env"},
		{"error", func(w *Writer) { w.Errorf("failed: %d", 1) }, "❌", "failed: 1"},
		{"statusf", func(w *Writer) { w.Statusf("•", "%d components", 2) }, "•", "2 components"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.write(New(buf))
			assert.Contains(t, buf.String(), tt.icon)
			assert.Contains(t, buf.String(), tt.text)
		})
	}
}

func TestWriter_KeyValueAligns(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.KeyValue("Path", "/opt/lib/libtbdex.so", 8)
	w.KeyValue("Platform", "linux/amd64/gnu", 8)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, strings.Index(lines[0], "/opt"), strings.Index(lines[1], "linux"))
}

func TestWriter_KeyValueLongLabel(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).KeyValue("A very long label", "v", 3)
	assert.Equal(t, "  A very long label: v\n", buf.String())
}

func TestWriter_CodeIndentsLines(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Code("export TBDEX_LIBRARY_OVERRIDE=/x\nnativecore probe")

	assert.Contains(t, buf.String(), "  export TBDEX_LIBRARY_OVERRIDE=/x\n")
	assert.Contains(t, buf.String(), "  nativecore probe\n")
}

func TestWriter_HeaderDimNewline(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)
	w.Header("Doctor")
	w.Dim("quiet")
	w.Newline()
	assert.Equal(t, "Doctor\nquiet\n\n", buf.String())
	assert.Same(t, buf, w.Out())
}

func TestShouldColor(t *testing.T) {
	// A buffer is never a terminal.
	assert.False(t, ShouldColor(&bytes.Buffer{}))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ShouldColor(&bytes.Buffer{}))
}

func TestNewAuto_PlainForBuffers(t *testing.T) {
	buf := &bytes.Buffer{}
	NewAuto(buf).Success("ok")
	assert.Equal(t, "✅ ok\n", buf.String(), "no escape codes when not a terminal")
}

func TestGetStyles(t *testing.T) {
	assert.Equal(t, "x", GetStyles(true).Header.Render("x"))
	assert.NotPanics(t, func() { GetStyles(false).Header.Render("x") })
}
