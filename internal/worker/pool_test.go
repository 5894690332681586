package worker

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestPoolStopUnblocksWorkers(t *testing.T) {
	// Nothing listens here; workers sit in BLPOP (or its dial retry) until
	// Stop cancels the pool context.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	p := NewPool(client, nil, nil, nil, nil, 2)
	p.Start()

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Stop to return once workers observe the cancelled context")
	}
}
