// Package tail follows an append-only file and yields complete lines.
package tail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// ErrTransient wraps read failures that are worth retrying on the next poll.
var ErrTransient = errors.New("transient read error")

// ErrLineTooLong reports a line that outgrew the line limit before its
// newline arrived. The line is discarded up to and including that newline.
var ErrLineTooLong = errors.New("line too long")

const (
	readChunk = 64 * 1024
	// MaxLineSize bounds the bytes buffered for one unterminated line.
	MaxLineSize = 1 << 20
)

// Tailer reads lines appended to a file since the previous Poll.
// It is not safe for concurrent use.
type Tailer struct {
	path    string
	file    *os.File
	offset  int64
	pending []byte // bytes of an unterminated final line
	buf     []byte
	maxLine int
	// discarding is set while skipping the rest of an oversized line.
	discarding bool
}

// OpenAtEnd opens path and positions the tailer at end-of-file, so
// existing content is never replayed.
func OpenAtEnd(path string) (*Tailer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("seeking to end of %s: %w", path, err)
	}
	return &Tailer{
		path:    path,
		file:    f,
		offset:  offset,
		buf:     make([]byte, readChunk),
		maxLine: MaxLineSize,
	}, nil
}

// Path returns the followed file path.
func (t *Tailer) Path() string {
	return t.path
}

// Offset returns the byte position up to which the file has been read.
func (t *Tailer) Offset() int64 {
	return t.offset
}

// Poll returns the complete lines appended since the last call, in file
// order, with trailing whitespace removed. A final line without a newline
// is held back until a later poll completes it. Each poll reads at most up
// to the file size observed when it starts, so a fast writer cannot keep
// it reading.
//
// On a read error the lines completed before the failure are returned along
// with an error wrapping ErrTransient; the next poll resumes from where the
// successful reads stopped. A line longer than MaxLineSize is dropped and
// reported with ErrLineTooLong.
func (t *Tailer) Poll() ([]string, error) {
	info, err := t.file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrTransient, t.path, err)
	}
	end := info.Size()

	var (
		lines   []string
		pollErr error
	)
	for t.offset < end {
		want := int64(len(t.buf))
		if rest := end - t.offset; rest < want {
			want = rest
		}
		n, err := t.file.ReadAt(t.buf[:want], t.offset)
		if n > 0 {
			t.offset += int64(n)
			lines = append(lines, t.consume(t.buf[:n])...)
			if len(t.pending) > t.maxLine {
				t.pending = t.pending[:0]
				t.discarding = true
				pollErr = errors.Join(pollErr, fmt.Errorf("%w: %s at offset %d exceeds %d bytes",
					ErrLineTooLong, t.path, t.offset, t.maxLine))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			pollErr = errors.Join(pollErr, fmt.Errorf("%w: reading %s at offset %d: %v", ErrTransient, t.path, t.offset, err))
			break
		}
	}

	return lines, pollErr
}

// consume adds chunk to the pending bytes and returns the lines it
// completes.
func (t *Tailer) consume(chunk []byte) []string {
	if t.discarding {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			return nil
		}
		chunk = chunk[i+1:]
		t.discarding = false
	}
	t.pending = append(t.pending, chunk...)
	return t.drain()
}

// drain splits off every newline-terminated line from pending.
func (t *Tailer) drain() []string {
	last := bytes.LastIndexByte(t.pending, '\n')
	if last < 0 {
		return nil
	}

	complete := t.pending[:last]
	lines := strings.Split(string(complete), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRightFunc(l, unicode.IsSpace)
	}

	rest := copy(t.pending, t.pending[last+1:])
	t.pending = t.pending[:rest]
	return lines
}

// Close releases the file handle.
func (t *Tailer) Close() error {
	return t.file.Close()
}
