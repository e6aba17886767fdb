package matrix

import (
	"context"
	"fmt"
	"slices"

	"maunium.net/go/mautrix/id"
)

// ListInvites returns the room ids of pending invites.
func (c *Client) ListInvites(ctx context.Context) ([]string, error) {
	resp, err := c.mx.SyncRequest(ctx, 0, "", "", false, "")
	if err != nil {
		return nil, fmt.Errorf("failed to sync invites: %w", err)
	}

	invites := make([]string, 0, len(resp.Rooms.Invite))
	for roomID := range resp.Rooms.Invite {
		invites = append(invites, roomID.String())
	}
	slices.Sort(invites)
	return invites, nil
}

// JoinRoom accepts an invite (or joins a public room) by id.
func (c *Client) JoinRoom(ctx context.Context, roomID string) error {
	if _, err := c.mx.JoinRoomByID(ctx, id.RoomID(roomID)); err != nil {
		return fmt.Errorf("failed to join %s: %w", roomID, err)
	}
	return nil
}

// JoinAllInvites accepts every pending invite, filtered to the allowlist when
// one is given, and returns the rooms actually joined. A room that cannot be
// joined is skipped.
func (c *Client) JoinAllInvites(ctx context.Context, allowlist []string) ([]string, error) {
	invites, err := c.ListInvites(ctx)
	if err != nil {
		return nil, err
	}

	var joined []string
	for _, roomID := range invites {
		if len(allowlist) > 0 && !slices.Contains(allowlist, roomID) {
			continue
		}
		if err := c.JoinRoom(ctx, roomID); err != nil {
			continue
		}
		joined = append(joined, roomID)
	}
	return joined, nil
}
