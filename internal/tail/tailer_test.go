package tail

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func appendTo(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString(content)
	require.NoError(t, err)
}

func TestTailer_SkipsExistingContent(t *testing.T) {
	path := writeFile(t, "old line 1\nold line 2\n")

	tl, err := OpenAtEnd(path)
	require.NoError(t, err)
	defer tl.Close()

	assert.Equal(t, int64(len("old line 1\nold line 2\n")), tl.Offset())

	lines, err := tl.Poll()
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestTailer_ReturnsAppendedLinesOnce(t *testing.T) {
	path := writeFile(t, "history\n")
	tl, err := OpenAtEnd(path)
	require.NoError(t, err)
	defer tl.Close()

	appendTo(t, path, "first\nsecond  \r\nthird\n")

	lines, err := tl.Poll()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, lines)

	lines, err = tl.Poll()
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestTailer_HoldsPartialLine(t *testing.T) {
	path := writeFile(t, "")
	tl, err := OpenAtEnd(path)
	require.NoError(t, err)
	defer tl.Close()

	appendTo(t, path, "complete\npart")
	lines, err := tl.Poll()
	require.NoError(t, err)
	assert.Equal(t, []string{"complete"}, lines)

	lines, err = tl.Poll()
	require.NoError(t, err)
	assert.Empty(t, lines, "unterminated line must not be returned")

	appendTo(t, path, "ial line\n")
	lines, err = tl.Poll()
	require.NoError(t, err)
	assert.Equal(t, []string{"partial line"}, lines)
	assert.Equal(t, int64(len("complete\npartial line\n")), tl.Offset())
}

func TestTailer_LargeAppend(t *testing.T) {
	path := writeFile(t, "")
	tl, err := OpenAtEnd(path)
	require.NoError(t, err)
	defer tl.Close()

	// Spans several read chunks.
	line := strings.Repeat("x", 1000)
	var sb strings.Builder
	for i := 0; i < 300; i++ {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	appendTo(t, path, sb.String())

	lines, err := tl.Poll()
	require.NoError(t, err)
	require.Len(t, lines, 300)
	assert.Equal(t, line, lines[299])
}

func TestTailer_PreservesBlankLines(t *testing.T) {
	path := writeFile(t, "")
	tl, err := OpenAtEnd(path)
	require.NoError(t, err)
	defer tl.Close()

	appendTo(t, path, "a\n\nb\n")
	lines, err := tl.Poll()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "b"}, lines)
}

func TestOpenAtEnd_MissingFile(t *testing.T) {
	_, err := OpenAtEnd(filepath.Join(t.TempDir(), "nope.log"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTailer_ReadErrorIsTransient(t *testing.T) {
	path := writeFile(t, "")
	tl, err := OpenAtEnd(path)
	require.NoError(t, err)

	require.NoError(t, tl.Close())
	_, err = tl.Poll()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransient)
}

func TestTailer_Path(t *testing.T) {
	path := writeFile(t, "")
	tl, err := OpenAtEnd(path)
	require.NoError(t, err)
	defer tl.Close()

	assert.Equal(t, path, tl.Path())
}

func TestTailer_DropsOversizedLine(t *testing.T) {
	path := writeFile(t, "")
	tl, err := OpenAtEnd(path)
	require.NoError(t, err)
	defer tl.Close()
	tl.maxLine = 10

	appendTo(t, path, "short\n"+strings.Repeat("x", 30))
	lines, err := tl.Poll()
	assert.ErrorIs(t, err, ErrLineTooLong)
	assert.NotErrorIs(t, err, ErrTransient)
	assert.Equal(t, []string{"short"}, lines)
	assert.Empty(t, tl.pending)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), tl.Offset(), "offset advances past the dropped bytes")

	// The rest of the oversized line is skipped up to its newline.
	appendTo(t, path, strings.Repeat("y", 5)+"\nnext\n")
	lines, err = tl.Poll()
	require.NoError(t, err)
	assert.Equal(t, []string{"next"}, lines)
}

func TestTailer_PollStopsAtSizeSeenAtStart(t *testing.T) {
	path := writeFile(t, "")
	tl, err := OpenAtEnd(path)
	require.NoError(t, err)
	defer tl.Close()

	appendTo(t, path, "a\nb\n")
	lines, err := tl.Poll()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)
	assert.Equal(t, int64(4), tl.Offset())

	lines, err = tl.Poll()
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, int64(4), tl.Offset())
}
