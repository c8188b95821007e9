package observability

import (
	"crypto/md5"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// CaptureBuffer is an ErrorSink that queues captured problems for a UI to
// drain and display. Repeats of a message are dropped while an earlier
// capture is still fresh, so a flapping data source cannot flood the screen.
//
// It maps message hashes to last-capture times. Memory is bounded by an LRU
// cache; if the cache is too small and many distinct messages arrive at
// once, repeats may still get through.
type CaptureBuffer struct {
	mu       sync.Mutex
	messages []string
	lastSent *lru.Cache
	minGap   time.Duration
}

var _ ErrorSink = (*CaptureBuffer)(nil)

// NewCaptureBuffer returns a buffer that remembers up to size distinct
// messages for rate limiting and lets each through at most once per minGap.
func NewCaptureBuffer(size int, minGap time.Duration) (*CaptureBuffer, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CaptureBuffer{
		lastSent: cache,
		minGap:   minGap,
	}, nil
}

// CaptureException implements ErrorSink.
func (b *CaptureBuffer) CaptureException(err error, _ Tags) {
	b.add(err.Error())
}

// CaptureMessage implements ErrorSink.
func (b *CaptureBuffer) CaptureMessage(msg string, _ Tags) {
	b.add(msg)
}

// Drain returns the buffered messages and clears the buffer.
func (b *CaptureBuffer) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	messages := b.messages
	b.messages = nil
	return messages
}

func (b *CaptureBuffer) add(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := md5.New()
	h.Write([]byte(msg))
	hash := string(h.Sum(nil))

	now := time.Now()
	if last, ok := b.lastSent.Get(hash); ok && now.Sub(last.(time.Time)) < b.minGap {
		return
	}
	b.lastSent.Add(hash, now)

	b.messages = append(b.messages, msg)
}
