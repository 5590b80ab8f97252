package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/reservation"
)

// Source provides the current availability view.
type Source interface {
	Availability(ctx context.Context) ([]reservation.Availability, error)
	Capacity() int
}

// Publisher turns availability views into snapshot envelopes on a Hub.
//
// Publish calls are serialized so the hub never ends on an older view than
// the last one read from the source.
type Publisher struct {
	mu sync.Mutex

	hub *Hub
	src Source
	log *slog.Logger
	now func() time.Time
}

// NewPublisher constructs a Publisher.
func NewPublisher(hub *Hub, src Source, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		hub: hub,
		src: src,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Hub returns the hub snapshots are broadcast on.
func (p *Publisher) Hub() *Hub { return p.hub }

// Snapshot builds a snapshot envelope from the current availability view.
func (p *Publisher) Snapshot(ctx context.Context) (Envelope, error) {
	view, err := p.src.Availability(ctx)
	if err != nil {
		return Envelope{}, err
	}

	snap := Snapshot{Capacity: p.src.Capacity(), Items: make([]AvailabilityItem, 0, len(view))}
	for _, a := range view {
		snap.Items = append(snap.Items, AvailabilityItem{
			ID:        a.ProblemStatement.ID,
			Title:     a.ProblemStatement.Title,
			Taken:     a.Taken,
			Remaining: a.Remaining,
			Full:      a.Full,
		})
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return Envelope{}, err
	}
	return newEnvelope(TypeSnapshot, payload, p.now()), nil
}

// Publish broadcasts a fresh snapshot to every connected client.
func (p *Publisher) Publish(ctx context.Context) error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	env, err := p.Snapshot(ctx)
	if err != nil {
		p.log.Error("feed.publish.fail", "err", err)
		return err
	}
	p.hub.Broadcast(env)
	return nil
}

func newEnvelope(typ string, payload json.RawMessage, ts time.Time) Envelope {
	return Envelope{
		V:       Version,
		Type:    typ,
		ID:      uuid.NewString(),
		TS:      ts,
		Payload: payload,
	}
}
