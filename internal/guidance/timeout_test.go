package guidance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithin_Fast(t *testing.T) {
	v, ok := within(context.Background(), time.Second, func(context.Context) int {
		return 42
	})
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestWithin_Timeout(t *testing.T) {
	done := make(chan struct{})

	v, ok := within(context.Background(), 10*time.Millisecond, func(context.Context) string {
		<-done
		return "late"
	})
	assert.False(t, ok)
	assert.Equal(t, "", v)

	// The losing goroutine drains into the buffered channel and exits.
	close(done)
}

func TestWithin_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := within(ctx, time.Minute, func(context.Context) int {
		time.Sleep(50 * time.Millisecond)
		return 1
	})
	assert.False(t, ok)
}
