package sweep

import (
	"context"
	"slices"

	"github.com/catcord/sweeper/internal/ledger"
	"github.com/catcord/sweeper/internal/logger"
	"github.com/catcord/sweeper/internal/media"
)

// Syncer walks the bot's rooms and records upload events into the ledger.
// Each run only fetches the most recent page of messages per room; an upload
// that scrolls out of the window before being seen is never tracked, and
// retention only concerns itself with tracked uploads.
type Syncer struct {
	client    RoomClient
	ledger    Ledger
	log       *logger.Logger
	pageLimit int
}

// NewSyncer creates a syncer fetching up to pageLimit messages per room.
func NewSyncer(client RoomClient, led Ledger, pageLimit int, log *logger.Logger) *Syncer {
	return &Syncer{client: client, ledger: led, log: log, pageLimit: pageLimit}
}

// Sync refreshes the ledger from the rooms the bot has joined, filtered to
// the allowlist when one is configured. A room whose fetch fails is skipped;
// failure is isolated per room and never aborts the sync.
func (s *Syncer) Sync(ctx context.Context, allowlist []string) (Stats, error) {
	var stats Stats

	rooms, err := s.client.JoinedRooms(ctx)
	if err != nil {
		return stats, err
	}

	for _, roomID := range rooms {
		if len(allowlist) > 0 && !slices.Contains(allowlist, roomID) {
			continue
		}

		messages, err := s.client.RecentMessages(ctx, roomID, s.pageLimit)
		if err != nil {
			stats.RoomsFailed++
			s.log.Warn("skipping room, message fetch failed",
				logger.Field{Key: "room_id", Value: roomID},
				logger.Field{Key: "error", Value: err})
			continue
		}

		stats.RoomsSynced++
		for _, msg := range messages {
			if s.ingest(ctx, msg) {
				stats.UploadsTracked++
			}
		}
	}

	return stats, nil
}

// ingest records a single message if it carries a well-formed upload.
// Reports whether a row was upserted (re-ingesting a known event still
// counts; the ledger makes it a no-op).
func (s *Syncer) ingest(ctx context.Context, msg Message) bool {
	att, ok := ExtractAttachment(msg)
	if !ok {
		return false
	}

	ref, err := media.ParseRef(att.URI)
	if err != nil {
		// Malformed references are excluded from the ledger rather than
		// stored broken.
		s.log.Debug("ignoring unparseable media reference",
			logger.Field{Key: "event_id", Value: msg.EventID},
			logger.Field{Key: "uri", Value: att.URI})
		return false
	}

	u := ledger.Upload{
		EventID:     msg.EventID,
		RoomID:      msg.RoomID,
		Sender:      msg.Sender,
		Media:       ref,
		Mimetype:    msg.Mimetype,
		SizeBytes:   msg.SizeBytes,
		TimestampMS: msg.TimestampMS,
	}
	if err := s.ledger.Upsert(ctx, u); err != nil {
		s.log.Warn("failed to record upload",
			logger.Field{Key: "event_id", Value: msg.EventID},
			logger.Field{Key: "error", Value: err})
		return false
	}
	return true
}
