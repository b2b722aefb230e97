package model

// ThreadSelection identifies the thread panel a session currently has open.
// At most one thread is open per session. The zero value is the closed state.
type ThreadSelection struct {
	ChannelID string `json:"channel_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

// IsOpen reports whether a thread is selected.
func (t ThreadSelection) IsOpen() bool {
	return t.ChannelID != "" && t.MessageID != ""
}

// Open returns the selection pointing at the given thread. Opening a thread
// while another is open replaces the selection.
func (t ThreadSelection) Open(channelID, messageID string) ThreadSelection {
	return ThreadSelection{ChannelID: channelID, MessageID: messageID}
}

// Close handles a close transition. An explicit close always closes. An
// implicit close (clicking outside the panel) only closes when the reply
// draft is empty, so unsent text is never lost.
func (t ThreadSelection) Close(explicit bool, draft string) ThreadSelection {
	if !explicit && draft != "" {
		return t
	}
	return ThreadSelection{}
}

// OpenThreadRequest opens the thread panel for a message.
type OpenThreadRequest struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

// CloseThreadRequest closes the thread panel. Explicit false models an
// outside click; Draft carries the unsent reply text, which blocks the close.
type CloseThreadRequest struct {
	Explicit bool   `json:"explicit"`
	Draft    string `json:"draft,omitempty"`
}
