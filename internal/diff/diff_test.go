package diff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Identical(t *testing.T) {
	text := "Shader {\n    _A\n}\n"
	fd := Compute("a.shader", text, text, true)

	assert.True(t, fd.Empty())
	assert.Empty(t, Unified(fd, nil))
}

func TestCompute_Addition(t *testing.T) {
	oldContent := "line1\nline2\nline3\n"
	newContent := "line1\nline2\nline2.5\nline3\n"

	fd := Compute("a.shader", oldContent, newContent, true)

	require.Len(t, fd.Hunks, 1)
	h := fd.Hunks[0]
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, 3, h.OldCount)
	assert.Equal(t, 1, h.NewStart)
	assert.Equal(t, 4, h.NewCount)

	var added []string
	for _, l := range h.Lines {
		if l.Type == LineAdded {
			added = append(added, l.Content)
		}
	}
	assert.Equal(t, []string{"line2.5"}, added)
}

func TestCompute_Deletion(t *testing.T) {
	fd := Compute("a.shader", "a\nb\nc\nd\n", "a\nb\nd\n", true)

	require.Len(t, fd.Hunks, 1)
	found := false
	for _, l := range fd.Hunks[0].Lines {
		if l.Type == LineRemoved && l.Content == "c" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompute_SeparateHunks(t *testing.T) {
	var oldLines, newLines []string
	for i := 0; i < 30; i++ {
		line := fmt.Sprintf("line%d", i)
		oldLines = append(oldLines, line)
		newLines = append(newLines, line)
	}
	newLines[2] = "changed-early"
	newLines[27] = "changed-late"

	fd := NewEngine(2).Compute("a.shader", strings.Join(oldLines, "\n")+"\n", strings.Join(newLines, "\n")+"\n", true)

	assert.Len(t, fd.Hunks, 2)
}

func TestCompute_NewFile(t *testing.T) {
	fd := Compute("a.shader", "", "a\nb\n", false)

	assert.True(t, fd.IsNew)
	assert.False(t, fd.Empty())
	require.Len(t, fd.Hunks, 1)
	assert.Equal(t, 0, fd.Hunks[0].OldStart)
	assert.Equal(t, 2, fd.Hunks[0].NewCount)

	out := Unified(fd, nil)
	assert.True(t, strings.HasPrefix(out, "--- /dev/null\n+++ a.shader (generated)\n@@ -0,0 +1,2 @@\n"))
	assert.Contains(t, out, "+a\n+b\n")
}

func TestUnified(t *testing.T) {
	fd := Compute("UnityToon.shader", "x\nold\ny\n", "x\nnew\ny\n", true)

	want := "--- UnityToon.shader\n" +
		"+++ UnityToon.shader (generated)\n" +
		"@@ -1,3 +1,3 @@\n" +
		" x\n" +
		"-old\n" +
		"+new\n" +
		" y\n"
	assert.Equal(t, want, Unified(fd, nil))
}

func TestUnified_Style(t *testing.T) {
	fd := Compute("a.shader", "x\nold\n", "x\nnew\n", true)

	var parts []Part
	out := Unified(fd, func(part Part, line string) string {
		parts = append(parts, part)
		return "<" + line + ">"
	})

	assert.Equal(t, []Part{PartFileHeader, PartFileHeader, PartHunkHeader, PartContext, PartRemoved, PartAdded}, parts)
	assert.True(t, strings.HasPrefix(out, "<--- a.shader>\n<+++ a.shader (generated)>\n<@@ "))
	assert.True(t, strings.HasSuffix(out, "<-old>\n<+new>\n"))
}

func TestLineTypePrefix(t *testing.T) {
	assert.Equal(t, "+", LineAdded.Prefix())
	assert.Equal(t, "-", LineRemoved.Prefix())
	assert.Equal(t, " ", LineContext.Prefix())
}
