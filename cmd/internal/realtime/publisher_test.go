package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/reservation"
)

// gatedSource reads the count, then blocks the first caller until released.
type gatedSource struct {
	fakeSource

	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSource) Availability(ctx context.Context) ([]reservation.Availability, error) {
	view, err := g.fakeSource.Availability(ctx)
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return view, err
}

func TestPublisher_ConcurrentPublishKeepsNewestSnapshot(t *testing.T) {
	t.Parallel()

	src := &gatedSource{entered: make(chan struct{}), release: make(chan struct{})}
	src.set(1)
	hub := NewHub(nil)
	pub := NewPublisher(hub, src, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = pub.Publish(context.Background())
	}()
	<-src.entered

	src.set(2)
	go func() {
		defer wg.Done()
		_ = pub.Publish(context.Background())
	}()

	// Give the second publisher time to run ahead if it could.
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	latest, ok := hub.Latest()
	if !ok {
		t.Fatalf("expected a latest snapshot")
	}
	var snap Snapshot
	if err := json.Unmarshal(latest.Payload, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Taken != 2 {
		t.Fatalf("expected latest snapshot taken=2, got %+v", snap.Items)
	}
}

func TestPublisher_NilIsNoop(t *testing.T) {
	t.Parallel()

	var pub *Publisher
	if err := pub.Publish(context.Background()); err != nil {
		t.Fatalf("expected nil publisher to be a no-op, got %v", err)
	}
}
