package client

import (
	"github.com/hivespace/hivechat/chat"
)

// SessionInfo from GET /sessions.
type SessionInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	LastActivity string `json:"last_activity"`
	MessageCount int    `json:"message_count"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// MessageInfo is a message as the API encodes it. Older servers send the
// author in Type ("user" / "ai"), newer ones in Role.
type MessageInfo struct {
	ID         string `json:"id"`
	Type       string `json:"type,omitempty"`
	Role       string `json:"role,omitempty"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
	SenderName string `json:"sender_name,omitempty"`
}

// SessionDetail from GET /sessions/{id} and POST /sessions.
type SessionDetail struct {
	SessionInfo
	Messages []MessageInfo `json:"messages"`
}

// CreateSessionRequest for POST /sessions.
type CreateSessionRequest struct {
	Title string `json:"title"`
}

// SendMessageRequest for POST /messages/send and /messages/send/stream.
type SendMessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// SendMessageResponse from POST /messages/send.
type SendMessageResponse struct {
	Success        bool         `json:"success"`
	UserMessage    *MessageInfo `json:"user_message,omitempty"`
	AIResponse     *MessageInfo `json:"ai_response,omitempty"`
	SessionUpdated bool         `json:"session_updated"`
}

// ClearResponse from DELETE /sessions/{id}/clear.
type ClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ExportResponse from GET /sessions/{id}/export.
type ExportResponse struct {
	Success  bool   `json:"success"`
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// ErrorResponse for API errors. FastAPI reports failures in Detail, which
// may be a string or a list of validation objects.
type ErrorResponse struct {
	Error  string `json:"error,omitempty"`
	Detail any    `json:"detail,omitempty"`
}

// ToMessage converts the wire form to the chat model.
func (m MessageInfo) ToMessage() chat.Message {
	role := m.Role
	if role == "" {
		role = m.Type
	}
	return chat.Message{
		ID:        m.ID,
		Role:      chat.ParseRole(role),
		Text:      m.Text,
		Sender:    m.SenderName,
		Timestamp: chat.ParseTimestamp(m.Timestamp),
	}
}

// ToSession converts a session summary to the chat model.
func (s SessionInfo) ToSession() chat.Session {
	return chat.Session{
		ID:           s.ID,
		Title:        s.Title,
		LastActivity: s.LastActivity,
		MessageCount: s.MessageCount,
		CreatedAt:    chat.ParseTimestamp(s.CreatedAt),
		UpdatedAt:    chat.ParseTimestamp(s.UpdatedAt),
	}
}

// ToSession converts a session detail, messages included, to the chat model.
func (d SessionDetail) ToSession() chat.Session {
	s := d.SessionInfo.ToSession()
	s.Messages = make([]chat.Message, 0, len(d.Messages))
	for _, m := range d.Messages {
		s.Messages = append(s.Messages, m.ToMessage())
	}
	if s.MessageCount == 0 {
		s.MessageCount = len(s.Messages)
	}
	return s
}
