package exception

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mezonai/powchain/logx"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Contains(s string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Contains(b.buf.Bytes(), []byte(s))
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	out := &syncBuffer{}
	logx.SetOutput(out)

	done := make(chan struct{})
	SafeGo("boom", func() {
		defer close(done)
		panic("kaboom")
	})
	<-done

	// fn's own defers run before the recovery logs.
	assert.Eventually(t, func() bool {
		return out.Contains("Panic in boom: kaboom")
	}, time.Second, 10*time.Millisecond)
}
