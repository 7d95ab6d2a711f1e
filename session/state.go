package session

import (
	"sync"

	"github.com/hivespace/hivechat/chat"
)

// State is the client-side application state: the known sessions, sorted
// most recent first, and which one is current. It is safe for concurrent
// use.
type State struct {
	mu       sync.RWMutex
	current  string
	sessions []chat.Session
}

func (s *State) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *State) SetCurrent(id string) {
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
}

// Sessions returns a copy of the session list.
func (s *State) Sessions() []chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chat.Session(nil), s.sessions...)
}

// SetSessions sorts and stores list, replacing whatever was there.
func (s *State) SetSessions(list []chat.Session) {
	sorted := append([]chat.Session(nil), list...)
	chat.SortSessions(sorted)
	s.mu.Lock()
	s.sessions = sorted
	s.mu.Unlock()
}

func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Session looks id up in the list.
func (s *State) Session(id string) (chat.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := chat.Find(s.sessions, id); i >= 0 {
		return s.sessions[i], true
	}
	return chat.Session{}, false
}

// CurrentSession returns the current session's summary, if it is listed.
func (s *State) CurrentSession() (chat.Session, bool) {
	return s.Session(s.Current())
}
