package message

import "strings"

// FilterConfig holds the bot identity used for reply decisions (value type).
type FilterConfig struct {
	BotID          string // Suppresses echoes of the bot's own posts
	BotName        string // Used for mention detection
	RequireMention bool   // Only reply when the bot is addressed
}

// Skip reasons returned by Decide.
const (
	ReasonBotSender    = "bot_sender"
	ReasonOwnID        = "own_id"
	ReasonEmptyText    = "empty_text"
	ReasonNotMentioned = "not_mentioned"
)

// Decision represents the outcome of filtering an inbound event (value type).
type Decision struct {
	Respond bool
	Reason  string // Set when Respond is false
}

// Decide returns whether the bot should reply to an event.
// This is a PURE function - no side effects.
func Decide(ev Event, cfg FilterConfig) Decision {
	if ev.SenderType == SenderBot {
		return Decision{Reason: ReasonBotSender}
	}

	// Backup identity check: GroupMe occasionally reports the bot's own
	// posts with sender_type "user" but the bot's ID.
	if cfg.BotID != "" && (ev.SenderID == cfg.BotID || ev.UserID == cfg.BotID) {
		return Decision{Reason: ReasonOwnID}
	}

	if strings.TrimSpace(ev.Text) == "" {
		return Decision{Reason: ReasonEmptyText}
	}

	if cfg.RequireMention && !Mentioned(ev, cfg.BotName) {
		return Decision{Reason: ReasonNotMentioned}
	}

	return Decision{Respond: true}
}

// Mentioned reports whether the bot is addressed in the event, either by
// name in the text or via a mentions attachment.
// This is a PURE function.
func Mentioned(ev Event, botName string) bool {
	if botName != "" {
		text := strings.ToLower(ev.Text)
		name := strings.ToLower(botName)
		if strings.Contains(text, "@"+name) || strings.Contains(text, name) {
			return true
		}
	}

	for _, a := range ev.Attachments {
		if a.Type == "mentions" {
			return true
		}
	}

	return false
}
