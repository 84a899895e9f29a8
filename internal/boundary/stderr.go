package boundary

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	stderrTailBytes = 4096
	maxLineBytes    = 64 << 10
)

// tailBuffer keeps the last stderrTailBytes of host stderr and logs each
// complete line at debug level.
type tailBuffer struct {
	mu   sync.Mutex
	tail []byte
	line []byte
	log  zerolog.Logger
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tail = append(b.tail, p...)
	if over := len(b.tail) - stderrTailBytes; over > 0 {
		b.tail = append(b.tail[:0], b.tail[over:]...)
	}
	b.line = append(b.line, p...)
	for {
		idx := indexByte(b.line, '\n')
		if idx < 0 {
			break
		}
		if l := strings.TrimSpace(string(b.line[:idx])); l != "" {
			b.log.Debug().Str("stream", "stderr").Msg(l)
		}
		b.line = b.line[idx+1:]
	}
	if len(b.line) > maxLineBytes {
		b.line = b.line[:0]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.tail))
}

func indexByte(b []byte, c byte) int {
	for i := range b {
		if b[i] == c {
			return i
		}
	}
	return -1
}
