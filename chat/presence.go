package chat

import (
	"context"
	"log"
	"sync"
	"time"

	"qchat-service/model"
)

// PresenceRegistry tracks currently connected users. Register and Unregister
// broadcast the full snapshot to every connected client; the registry is a
// process-local cache, reset on restart.
type PresenceRegistry interface {
	Register(id string, profile Profile)
	Unregister(ctx context.Context, id string)
	Snapshot() []Profile
}

// Presence is the in-memory registry. Socket handlers run on separate
// goroutines, so access is serialized with a mutex. Snapshot order is
// insertion order; re-registering an identity overwrites in place.
type Presence struct {
	mu      sync.Mutex
	entries map[string]Profile
	order   []string
	emitter Emitter
	users   UserStore
}

func NewPresence(emitter Emitter, users UserStore) *Presence {
	return &Presence{
		entries: make(map[string]Profile),
		emitter: emitter,
		users:   users,
	}
}

func (p *Presence) Register(id string, profile Profile) {
	p.mu.Lock()
	if _, ok := p.entries[id]; !ok {
		p.order = append(p.order, id)
	}
	p.entries[id] = profile
	snapshot := p.snapshotLocked()
	p.mu.Unlock()

	p.emitter.Broadcast(EventUpdatedUsers, snapshot)
}

// Unregister removes the entry, broadcasts the remaining snapshot and writes
// status/lastSeen through to the user document. The write-through is the
// authoritative record; the broadcast is best-effort.
func (p *Presence) Unregister(ctx context.Context, id string) {
	p.mu.Lock()
	if _, ok := p.entries[id]; ok {
		delete(p.entries, id)
		for i, v := range p.order {
			if v == id {
				p.order = append(p.order[:i], p.order[i+1:]...)
				break
			}
		}
	}
	snapshot := p.snapshotLocked()
	p.mu.Unlock()

	p.emitter.Broadcast(EventUpdatedUsers, snapshot)

	if err := p.users.SetPresence(ctx, id, model.StatusOffline, time.Now()); err != nil {
		log.Printf("presence: persisting last seen for %s: %v", id, err)
	}
}

func (p *Presence) Snapshot() []Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Presence) snapshotLocked() []Profile {
	snapshot := make([]Profile, 0, len(p.order))
	for _, id := range p.order {
		snapshot = append(snapshot, p.entries[id])
	}
	return snapshot
}
