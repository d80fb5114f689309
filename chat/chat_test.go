package chat

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"qchat-service/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes behind the store and transport interfaces.

type emitted struct {
	Room    string
	Event   string
	Message any
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (f *fakeEmitter) Broadcast(event string, message any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{Event: event, Message: message})
}

func (f *fakeEmitter) Emit(room string, event string, message any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{Room: room, Event: event, Message: message})
}

func (f *fakeEmitter) last() (emitted, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return emitted{}, false
	}
	return f.events[len(f.events)-1], true
}

func (f *fakeEmitter) byEvent(event string) []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []emitted
	for _, e := range f.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type presenceWrite struct {
	ID       string
	Status   string
	LastSeen time.Time
}

type memUsers struct {
	users  map[string]model.User
	writes []presenceWrite
}

func newMemUsers(users ...model.User) *memUsers {
	m := &memUsers{users: make(map[string]model.User)}
	for _, u := range users {
		m.users[u.ID.Hex()] = u
	}
	return m
}

func (m *memUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return &u, nil
}

func (m *memUsers) FindByIDs(_ context.Context, ids []string) (map[string]model.User, error) {
	out := make(map[string]model.User, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (m *memUsers) SetPresence(_ context.Context, id string, status string, lastSeen time.Time) error {
	m.writes = append(m.writes, presenceWrite{ID: id, Status: status, LastSeen: lastSeen})
	return nil
}

type memMessages struct {
	docs []*model.Message
	err  error
}

func (m *memMessages) Insert(_ context.Context, msg *model.Message) error {
	if m.err != nil {
		return m.err
	}
	msg.ID = primitive.NewObjectID()
	stored := *msg
	m.docs = append(m.docs, &stored)
	return nil
}

func (m *memMessages) FindByID(_ context.Context, id string) (*model.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.docs {
		if d.ID.Hex() == id {
			cp := *d
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: message %s", ErrNotFound, id)
}

func (m *memMessages) FindByRoom(_ context.Context, roomID string) ([]model.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.filter(func(d *model.Message) bool {
		return d.RoomID == roomID
	}), nil
}

func (m *memMessages) FindDirect(_ context.Context, roomID string, userA string, userB string) ([]model.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.filter(func(d *model.Message) bool {
		if d.RoomID != roomID {
			return false
		}
		s, r := d.Sender.Hex(), d.Receiver.Hex()
		return (s == userA && r == userB) || (s == userB && r == userA)
	}), nil
}

func (m *memMessages) filter(keep func(*model.Message) bool) []model.Message {
	out := []model.Message{}
	for _, d := range m.docs {
		if keep(d) {
			out = append(out, *d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *memMessages) ApplyEdit(_ context.Context, id string, content string, editedAt time.Time) error {
	for _, d := range m.docs {
		if d.ID.Hex() == id {
			d.Content = content
			d.IsEdited = true
			d.EditedAt = editedAt
			return nil
		}
	}
	return fmt.Errorf("%w: message %s", ErrNotFound, id)
}

func (m *memMessages) MarkDeleted(_ context.Context, id string) error {
	for _, d := range m.docs {
		if d.ID.Hex() == id {
			d.IsDeleted = true
			return nil
		}
	}
	return fmt.Errorf("%w: message %s", ErrNotFound, id)
}

// stored returns the underlying document, bypassing view blanking.
func (m *memMessages) stored(id string) *model.Message {
	for _, d := range m.docs {
		if d.ID.Hex() == id {
			return d
		}
	}
	return nil
}

type memGroups struct {
	groups map[string]*model.Group
}

func newMemGroups(groups ...*model.Group) *memGroups {
	m := &memGroups{groups: make(map[string]*model.Group)}
	for _, g := range groups {
		m.groups[g.ID.Hex()] = g
	}
	return m
}

func (m *memGroups) Exists(_ context.Context, groupID string) error {
	if _, ok := m.groups[groupID]; !ok {
		return fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	return nil
}

func (m *memGroups) AppendMessage(_ context.Context, groupID string, messageID string) error {
	g, ok := m.groups[groupID]
	if !ok {
		return fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	mid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return err
	}
	g.Messages = append(g.Messages, mid)
	g.UpdatedAt = time.Now()
	return nil
}

type recordedEvents struct {
	mu      sync.Mutex
	actions []string
}

func (r *recordedEvents) Publish(action string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

// Fixed identities; aliceID sorts before bobID.
const (
	aliceID = "5f0000000000000000000001"
	bobID   = "5f0000000000000000000002"
	carolID = "5f0000000000000000000003"
)

func oid(hex string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		panic(err)
	}
	return id
}

type rig struct {
	users    *memUsers
	messages *memMessages
	groups   *memGroups
	emitter  *fakeEmitter
	events   *recordedEvents
	presence *Presence
	rooms    *RoomRouter
	pipeline *Pipeline
}

func newRig() *rig {
	users := newMemUsers(
		model.User{ID: oid(aliceID), Name: "Alice", ProfilePicture: "alice.png", Role: model.RoleMember},
		model.User{ID: oid(bobID), Name: "Bob", Role: model.RoleMember},
		model.User{ID: oid(carolID), Name: "Carol", Role: model.RoleAdmin},
	)
	messages := &memMessages{}
	groups := newMemGroups()
	emitter := &fakeEmitter{}
	events := &recordedEvents{}

	return &rig{
		users:    users,
		messages: messages,
		groups:   groups,
		emitter:  emitter,
		events:   events,
		presence: NewPresence(emitter, users),
		rooms:    NewRoomRouter(messages, users),
		pipeline: NewPipeline(messages, groups, users, emitter, events),
	}
}
