package model

import (
	"time"
)

// Reaction is an emoji annotation on a message. Count always equals
// len(Users) and there is at most one Reaction per emoji per message.
type Reaction struct {
	Emoji string   `json:"emoji"`
	Users []string `json:"users"`
	Count int      `json:"count"`
}

// Message is a top-level channel message or a reply nested under a parent.
// Replies are flat: a reply never carries further nested replies.
type Message struct {
	ID         string `json:"id"`
	ChannelID  string `json:"channel_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Body       string `json:"body"`

	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`

	Reactions          []Reaction `json:"reactions"`
	Replies            []Message  `json:"replies"`
	ReplyCount         int        `json:"reply_count"`
	ThreadParticipants []string   `json:"thread_participants"`
	Pinned             bool       `json:"pinned,omitempty"`
}

// HasReaction reports whether userID already reacted with emoji.
func (m *Message) HasReaction(emoji, userID string) bool {
	for i := range m.Reactions {
		if m.Reactions[i].Emoji != emoji {
			continue
		}
		for _, u := range m.Reactions[i].Users {
			if u == userID {
				return true
			}
		}
	}
	return false
}

// SendMessageRequest is the request to post a message or reply.
type SendMessageRequest struct {
	Body string `json:"body"`
}

// SendMessageResponse is the response after posting a message.
type SendMessageResponse struct {
	Message *Message `json:"message"`
}

// ListMessagesResponse is the response for listing channel messages.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}

// ReactionRequest names the emoji for a reaction mutation.
type ReactionRequest struct {
	Emoji string `json:"emoji"`
}
