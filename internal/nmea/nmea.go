// Package nmea extracts NMEA sentences from raw receiver traffic.
package nmea

import (
	"bufio"
	"errors"
	"strings"
	"sync"
)

// MaxLineLen bounds one sentence; NMEA 0183 caps sentences at 82 characters
// but some vendor talkers exceed that.
const MaxLineLen = 128

var ErrLineTooLong = errors.New("nmea: line exceeds maximum length")

// ReadSentence reads one '$'-prefixed line from the source, consuming bytes
// until a line feed. Leading non-sentence bytes are dropped. The caller owns
// the bufio.Reader so repeated calls over one stream do not lose bytes the
// buffer has already consumed.
func ReadSentence(br *bufio.Reader) (string, error) {
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if idx := strings.IndexByte(line, '$'); idx >= 0 {
			if len(line)-idx > MaxLineLen {
				return "", ErrLineTooLong
			}
			return line[idx:], nil
		}
	}
}

// LineBuffer assembles bytes into sentences and retains the most recent ones
// in a bounded buffer. It implements io.Writer so it can absorb the bytes a
// frame reader drops while scanning for sync.
type LineBuffer struct {
	mu      sync.Mutex
	partial []byte
	lines   []string
	max     int
	total   uint64
}

// NewLineBuffer returns a buffer retaining up to max sentences; older
// sentences are evicted first.
func NewLineBuffer(max int) *LineBuffer {
	return &LineBuffer{max: max}
}

// Write absorbs raw bytes, emitting a sentence whenever a line feed
// completes one. It never fails.
func (b *LineBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range p {
		if c != '\n' {
			if len(b.partial) < MaxLineLen {
				b.partial = append(b.partial, c)
			}
			continue
		}
		line := strings.TrimRight(string(b.partial), "\r")
		b.partial = b.partial[:0]
		if idx := strings.IndexByte(line, '$'); idx >= 0 {
			b.push(line[idx:])
		}
	}
	return len(p), nil
}

func (b *LineBuffer) push(line string) {
	if len(b.lines) == b.max {
		copy(b.lines, b.lines[1:])
		b.lines = b.lines[:len(b.lines)-1]
	}
	b.lines = append(b.lines, line)
	b.total++
}

// Total returns the number of sentences absorbed since creation, including
// evicted ones.
func (b *LineBuffer) Total() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// Lines returns the retained sentences, oldest first.
func (b *LineBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Drain returns the retained sentences and empties the buffer.
func (b *LineBuffer) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.lines
	b.lines = nil
	return out
}
