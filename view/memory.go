package view

import (
	"sync"

	"github.com/hivespace/hivechat/chat"
)

// Notification is a recorded Notify call.
type Notification struct {
	Level Level
	Text  string
}

// Memory is an in-memory View, SessionList and Notifier. It records every
// call so tests can assert on both the final state and the history.
type Memory struct {
	mu       sync.Mutex
	nodes    []Node
	updates  map[string][]string
	scrolls  int
	resets   int
	notes    []Notification
	sessions []chat.Session
	activeID string
}

func NewMemory() *Memory {
	return &Memory{updates: make(map[string][]string)}
}

func (m *Memory) AppendMessage(n Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = append(m.nodes, n)
}

// UpdateMessage replaces the body of a live node. Updates to removed or
// unknown nodes are dropped.
func (m *Memory) UpdateMessage(id, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.nodes {
		if m.nodes[i].ID == id {
			m.nodes[i].Body = body
			m.nodes[i].Pending = false
			m.updates[id] = append(m.updates[id], body)
			return
		}
	}
}

func (m *Memory) RemoveMessage(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.nodes {
		if m.nodes[i].ID == id {
			m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)
			return
		}
	}
}

func (m *Memory) ScrollToEnd() {
	m.mu.Lock()
	m.scrolls++
	m.mu.Unlock()
}

func (m *Memory) Reset() {
	m.mu.Lock()
	m.nodes = nil
	m.resets++
	m.mu.Unlock()
}

func (m *Memory) ShowSessions(sessions []chat.Session, activeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append([]chat.Session(nil), sessions...)
	m.activeID = activeID
}

func (m *Memory) Notify(level Level, text string) {
	m.mu.Lock()
	m.notes = append(m.notes, Notification{Level: level, Text: text})
	m.mu.Unlock()
}

// Nodes returns a copy of the live nodes in display order.
func (m *Memory) Nodes() []Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Node(nil), m.nodes...)
}

// Node looks up a live node by ID.
func (m *Memory) Node(id string) (Node, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Updates returns every body written to id, oldest first.
func (m *Memory) Updates(id string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.updates[id]...)
}

func (m *Memory) Scrolls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scrolls
}

func (m *Memory) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

func (m *Memory) Notifications() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.notes...)
}

// Sessions returns the last published session list and active ID.
func (m *Memory) Sessions() ([]chat.Session, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]chat.Session(nil), m.sessions...), m.activeID
}
