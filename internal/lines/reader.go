// Package lines reads newline-delimited text without failing on long lines.
package lines

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// DefaultMaxLen bounds a line before it is reported as too long.
const DefaultMaxLen = 1 << 20

// #region line
// Line is one input line. Text excludes the line terminator. When TooLong is
// set the line exceeded the reader's limit and Text is empty; the reader has
// already skipped to the next line.
type Line struct {
	No      int
	Text    string
	TooLong bool
}
// #endregion line

// #region reader
// Reader yields lines one at a time, bufio.Scanner style.
type Reader struct {
	br     *bufio.Reader
	maxLen int
	no     int
	line   Line
	err    error
	done   bool
}

// NewReader reads from r. maxLen <= 0 uses DefaultMaxLen.
func NewReader(r io.Reader, maxLen int) *Reader {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Reader{br: bufio.NewReader(r), maxLen: maxLen}
}

// Next advances to the next line. It returns false at end of input or on a
// read error, which Err then reports.
func (r *Reader) Next() bool {
	if r.done {
		return false
	}
	var buf []byte
	tooLong := false
	for {
		chunk, err := r.br.ReadSlice('\n')
		if !tooLong {
			n := len(chunk)
			if n > 0 && chunk[n-1] == '\n' {
				n--
			}
			if len(buf)+n > r.maxLen {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			r.done = true
			if !tooLong && len(buf) == 0 {
				return false
			}
			break
		}
		if err != nil {
			r.err = err
			r.done = true
			return false
		}
		break
	}
	r.no++
	text := strings.TrimSuffix(string(buf), "\n")
	r.line = Line{No: r.no, Text: text, TooLong: tooLong}
	return true
}

// Line returns the line read by the last successful Next.
func (r *Reader) Line() Line {
	return r.line
}

// Err returns the first read error other than io.EOF.
func (r *Reader) Err() error {
	return r.err
}
// #endregion reader
