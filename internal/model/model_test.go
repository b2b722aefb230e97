package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeChannelName(t *testing.T) {
	assert.Equal(t, "general", NormalizeChannelName("General"))
	assert.Equal(t, "dev-team_1", NormalizeChannelName("  Dev Team_1! "))
	assert.Equal(t, "announcements", NormalizeChannelName("#Announcements"))
	assert.Equal(t, "", NormalizeChannelName("!!!"))
	assert.Equal(t, "", NormalizeChannelName(""))

	long := NormalizeChannelName("this-name-is-definitely-way-too-long")
	assert.Equal(t, MaxChannelNameLength, len(long))
	assert.Equal(t, "this-name-is-definite", long)
}

func TestChannelPrivate(t *testing.T) {
	public := &Channel{Visibility: VisibilityPublic}
	private := &Channel{Visibility: VisibilityPrivate}
	assert.False(t, public.Private())
	assert.True(t, private.Private())
}

func TestVisibilityValid(t *testing.T) {
	assert.True(t, VisibilityPublic.Valid())
	assert.True(t, VisibilityPrivate.Valid())
	assert.False(t, Visibility("secret").Valid())
	assert.False(t, Visibility("").Valid())
}

func TestPresenceValid(t *testing.T) {
	for _, p := range []Presence{PresenceActive, PresenceAway, PresenceDND, PresenceOffline} {
		assert.True(t, p.Valid())
	}
	assert.False(t, Presence("busy").Valid())
	assert.False(t, Presence("").Valid())
}

func TestMessageHasReaction(t *testing.T) {
	msg := &Message{
		Reactions: []Reaction{
			{Emoji: "👍", Users: []string{"alice", "bob"}, Count: 2},
		},
	}
	assert.True(t, msg.HasReaction("👍", "alice"))
	assert.False(t, msg.HasReaction("👍", "carol"))
	assert.False(t, msg.HasReaction("🎉", "alice"))
}

func TestThreadSelectionOpenClose(t *testing.T) {
	var sel ThreadSelection
	assert.False(t, sel.IsOpen())

	sel = sel.Open("ch1", "msg1")
	assert.True(t, sel.IsOpen())
	assert.Equal(t, "ch1", sel.ChannelID)
	assert.Equal(t, "msg1", sel.MessageID)

	// Opening another thread replaces the selection.
	sel = sel.Open("ch2", "msg2")
	assert.Equal(t, "msg2", sel.MessageID)

	// Implicit close with an unsent draft keeps the panel open.
	sel = sel.Close(false, "half-typed reply")
	assert.True(t, sel.IsOpen())

	// Implicit close with no draft closes.
	sel = sel.Close(false, "")
	assert.False(t, sel.IsOpen())

	// Explicit close discards the draft.
	sel = sel.Open("ch1", "msg1").Close(true, "half-typed reply")
	assert.False(t, sel.IsOpen())
}
