package notify

import (
	"sync"
)

const (
	EventOrderCreated = "orderCreated"
	EventOrderUpdated = "orderUpdated"

	TypeJoin   = "join"
	TypeLeave  = "leave"
	TypeJoined = "joined"
	TypeLeft   = "left"
	TypeError  = "error"
)

// Message is a single frame pushed to subscribers.
type Message struct {
	Type    string `json:"type"`
	Group   string `json:"group,omitempty"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Subscriber owns a buffered outbound channel. A subscriber may be a member of
// several groups at once.
type Subscriber struct {
	C chan Message
}

func NewSubscriber(buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = 16
	}
	return &Subscriber{C: make(chan Message, buffer)}
}

// Hub fans messages out to the subscribers of a group. Publishing never blocks:
// a subscriber whose buffer is full misses the message.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{groups: make(map[string]map[*Subscriber]struct{})}
}

func (h *Hub) Join(group string, s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Subscriber]struct{})
		h.groups[group] = members
	}
	members[s] = struct{}{}
}

func (h *Hub) Leave(group string, s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(group, s)
}

// LeaveAll drops s from every group it joined.
func (h *Hub) LeaveAll(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for group := range h.groups {
		h.leaveLocked(group, s)
	}
}

func (h *Hub) leaveLocked(group string, s *Subscriber) {
	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, s)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// Publish delivers msg to every member of group and reports how many
// subscribers received it.
func (h *Hub) Publish(group string, msg Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.groups[group] {
		select {
		case s.C <- msg:
			delivered++
		default:
		}
	}
	return delivered
}

func (h *Hub) Members(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
