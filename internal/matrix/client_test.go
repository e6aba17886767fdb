package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

func messageEvent(content *event.MessageEventContent) *event.Event {
	return &event.Event{
		ID:        id.EventID("$evt:example.org"),
		RoomID:    id.RoomID("!room:example.org"),
		Sender:    id.UserID("@user:example.org"),
		Type:      event.EventMessage,
		Timestamp: 1700000000000,
		Content:   event.Content{Parsed: content},
	}
}

func TestToMessage_DirectAttachment(t *testing.T) {
	evt := messageEvent(&event.MessageEventContent{
		MsgType: event.MsgImage,
		Body:    "cat.png",
		URL:     id.ContentURIString("mxc://example.org/abc123"),
		Info: &event.FileInfo{
			MimeType: "image/png",
			Size:     2048,
		},
	})

	msg := toMessage(evt)

	assert.Equal(t, "$evt:example.org", msg.EventID)
	assert.Equal(t, "!room:example.org", msg.RoomID)
	assert.Equal(t, "@user:example.org", msg.Sender)
	assert.EqualValues(t, 1700000000000, msg.TimestampMS)
	assert.Equal(t, "mxc://example.org/abc123", msg.URL)
	assert.Empty(t, msg.FileURL)
	assert.Equal(t, "image/png", msg.Mimetype)
	assert.EqualValues(t, 2048, msg.SizeBytes)
}

func TestToMessage_EncryptedAttachment(t *testing.T) {
	evt := messageEvent(&event.MessageEventContent{
		MsgType: event.MsgFile,
		Body:    "секрет.pdf",
		File: &event.EncryptedFileInfo{
			URL: id.ContentURIString("mxc://example.org/enc456"),
		},
		Info: &event.FileInfo{MimeType: "application/pdf", Size: 4096},
	})

	msg := toMessage(evt)

	assert.Empty(t, msg.URL)
	assert.Equal(t, "mxc://example.org/enc456", msg.FileURL)
	assert.Equal(t, "application/pdf", msg.Mimetype)
}

func TestToMessage_PlainText(t *testing.T) {
	evt := messageEvent(&event.MessageEventContent{
		MsgType: event.MsgText,
		Body:    "just words",
	})

	msg := toMessage(evt)

	assert.Empty(t, msg.URL)
	assert.Empty(t, msg.FileURL)
	assert.Empty(t, msg.Mimetype)
	assert.Zero(t, msg.SizeBytes)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("https://matrix.example.org", "@sweeper:example.org", "token")
	require.NoError(t, err)
	require.NotNil(t, c)
}
