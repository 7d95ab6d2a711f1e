// Package chat holds the client-side data model: sessions and the messages
// inside them. It has no upstream imports so every other package can share it.
package chat

import (
	"sort"
	"strings"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole normalises the wire spellings. The API sends "ai" for assistant
// turns; anything that is not a user turn is treated as assistant output.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "human":
		return RoleUser
	default:
		return RoleAssistant
	}
}

// Message is one turn in a Session.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Sender    string
	Timestamp time.Time
}

// Session is a named conversation thread with a server-assigned ID.
type Session struct {
	ID           string
	Title        string
	LastActivity string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Messages     []Message
}

// SortSessions orders sessions by UpdatedAt, newest first. Sessions with an
// unknown UpdatedAt go last. Ties break on ID so repeated loads of the same
// data always produce the same order.
func SortSessions(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		switch {
		case a.UpdatedAt.IsZero() != b.UpdatedAt.IsZero():
			return !a.UpdatedAt.IsZero()
		case !a.UpdatedAt.Equal(b.UpdatedAt):
			return a.UpdatedAt.After(b.UpdatedAt)
		default:
			return a.ID < b.ID
		}
	})
}

// Find returns the index of the session with the given ID, or -1.
func Find(sessions []Session, id string) int {
	for i, s := range sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// ParseTimestamp accepts the formats the API has been seen to emit:
// RFC 3339 and zone-less ISO 8601 with optional fractional seconds. Zone-less
// values are read as local time. Unparseable input yields the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
