// Package matrix adapts the mautrix client to the narrow RoomClient
// capability the sweep engine consumes. Event shapes, content parsing and
// the invite sync all stay behind this package boundary.
package matrix

import (
	"context"
	"fmt"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/catcord/sweeper/internal/sweep"
)

// Client wraps an authenticated mautrix client.
type Client struct {
	mx *mautrix.Client
}

// NewClient creates a client for the given homeserver and bot credentials.
// No request is made until the first call; use Whoami to verify the token.
func NewClient(homeserverURL, mxid, accessToken string) (*Client, error) {
	mx, err := mautrix.NewClient(homeserverURL, id.UserID(mxid), accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create matrix client: %w", err)
	}
	return &Client{mx: mx}, nil
}

// Whoami verifies the access token and returns the authenticated user id.
func (c *Client) Whoami(ctx context.Context) (string, error) {
	resp, err := c.mx.Whoami(ctx)
	if err != nil {
		return "", fmt.Errorf("whoami failed: %w", err)
	}
	return resp.UserID.String(), nil
}

// JoinedRooms lists the rooms the bot is currently joined to.
func (c *Client) JoinedRooms(ctx context.Context) ([]string, error) {
	resp, err := c.mx.JoinedRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined rooms: %w", err)
	}
	rooms := make([]string, 0, len(resp.JoinedRooms))
	for _, roomID := range resp.JoinedRooms {
		rooms = append(rooms, roomID.String())
	}
	return rooms, nil
}

// RecentMessages fetches the most recent page of room messages, newest
// backwards, mapped to transport-neutral messages. Non-message events are
// dropped here.
func (c *Client) RecentMessages(ctx context.Context, roomID string, limit int) ([]sweep.Message, error) {
	resp, err := c.mx.Messages(ctx, id.RoomID(roomID), "", "", mautrix.DirectionBackward, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages from %s: %w", roomID, err)
	}

	messages := make([]sweep.Message, 0, len(resp.Chunk))
	for _, evt := range resp.Chunk {
		if evt.Type != event.EventMessage {
			continue
		}
		messages = append(messages, toMessage(evt))
	}
	return messages, nil
}

// Redact tombstones a message, attaching the given reason.
func (c *Client) Redact(ctx context.Context, roomID, eventID, reason string) error {
	_, err := c.mx.RedactEvent(ctx, id.RoomID(roomID), id.EventID(eventID), mautrix.ReqRedact{Reason: reason})
	if err != nil {
		return fmt.Errorf("failed to redact %s in %s: %w", eventID, roomID, err)
	}
	return nil
}

// SendText posts a plain text notice into a room.
func (c *Client) SendText(ctx context.Context, roomID, text string) error {
	if _, err := c.mx.SendText(ctx, id.RoomID(roomID), text); err != nil {
		return fmt.Errorf("failed to send text to %s: %w", roomID, err)
	}
	return nil
}

// toMessage flattens a room message event into the engine's message shape.
// Both attachment shapes are carried over as raw URIs; resolving them is the
// engine's job.
func toMessage(evt *event.Event) sweep.Message {
	msg := sweep.Message{
		EventID:     evt.ID.String(),
		RoomID:      evt.RoomID.String(),
		Sender:      evt.Sender.String(),
		TimestampMS: evt.Timestamp,
	}

	// Already-parsed content is fine; any other parse failure leaves the
	// event looking like a plain text message, which is simply not an upload.
	_ = evt.Content.ParseRaw(evt.Type)
	content := evt.Content.AsMessage()
	if content == nil {
		return msg
	}

	msg.URL = string(content.URL)
	if content.File != nil {
		msg.FileURL = string(content.File.URL)
	}
	if content.Info != nil {
		msg.Mimetype = content.Info.MimeType
		msg.SizeBytes = int64(content.Info.Size)
	}
	return msg
}
