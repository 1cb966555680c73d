package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

const (
	defaultMaxLineLen = 16 << 10
	readChunkSize     = 512
)

var errLineTooLong = fmt.Errorf("stream line exceeds limit: %w", ErrMalformed)

// lineReader splits a byte stream into newline-terminated messages. It
// tolerates sources that return (0, nil) on read timeouts, which serial
// ports do.
type lineReader struct {
	src        io.Reader
	pending    []byte
	chunk      []byte
	maxLen     int
	discarding bool
}

func newLineReader(src io.Reader, maxLen int) *lineReader {
	if maxLen <= 0 {
		maxLen = defaultMaxLineLen
	}

	return &lineReader{src: src, chunk: make([]byte, readChunkSize), maxLen: maxLen}
}

// ReadLine returns the next non-empty line without its terminator. An
// over-long line is skipped up to the next newline and reported once.
func (r *lineReader) ReadLine(ctx context.Context) ([]byte, error) {
	for {
		if idx := bytes.IndexByte(r.pending, '\n'); idx >= 0 {
			line := bytes.TrimSpace(r.pending[:idx])
			r.pending = r.pending[idx+1:]
			if r.discarding {
				r.discarding = false

				continue
			}
			if len(line) == 0 {
				continue
			}
			if len(line) > r.maxLen {
				return nil, errLineTooLong
			}

			return bytes.Clone(line), nil
		}
		if len(r.pending) > r.maxLen {
			r.pending = r.pending[:0]
			if !r.discarding {
				r.discarding = true

				return nil, errLineTooLong
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := r.src.Read(r.chunk)
		if n > 0 {
			r.pending = append(r.pending, r.chunk[:n]...)
		}
		if err != nil {
			return nil, err
		}
	}
}
