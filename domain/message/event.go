// Package message provides inbound event types and pure reply-decision
// functions. All functions are deterministic with no side effects.
package message

// SenderType identifies who posted a group message.
type SenderType string

const (
	SenderUser SenderType = "user"
	SenderBot  SenderType = "bot"
)

// Attachment represents a GroupMe message attachment.
// Only the type matters for reply decisions; mention attachments carry
// the user IDs that were tagged.
type Attachment struct {
	Type    string   `json:"type"`
	UserIDs []string `json:"user_ids,omitempty"`
}

// Event represents a single inbound group message (immutable value type).
// Constructed per webhook request and discarded after handling.
type Event struct {
	SenderID    string       `json:"sender_id"`
	SenderType  SenderType   `json:"sender_type"`
	SenderName  string       `json:"name"`
	UserID      string       `json:"user_id"`
	GroupID     string       `json:"group_id"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
