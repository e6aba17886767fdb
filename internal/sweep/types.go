// Package sweep implements the retention and disk-pressure eviction engine.
// It decides which tracked uploads to evict, in what order, and carries the
// eviction out one candidate at a time: redact the message, delete the blob
// files, drop the ledger row. The chat transport, the ledger store, the media
// locator and the disk probe are consumed through narrow interfaces so the
// engine stays testable without a homeserver.
package sweep

import (
	"context"
	"time"

	"github.com/catcord/sweeper/internal/ledger"
	"github.com/catcord/sweeper/internal/media"
)

// Trigger selects which sweep a run performs.
type Trigger string

const (
	// TriggerRetention is the scheduled age-based sweep.
	TriggerRetention Trigger = "retention"
	// TriggerPressure is the free-space driven sweep.
	TriggerPressure Trigger = "pressure"
)

// Reason labels why a candidate is being evicted. Under the pressure trigger
// the label depends on how full the disk is at the moment the candidate is
// processed; it never changes ordering or selection.
type Reason string

const (
	ReasonRetention Reason = "retention"
	ReasonPressure  Reason = "pressure"
	ReasonEmergency Reason = "emergency"
)

// RedactionText is the human-readable reason attached to the redaction.
func (r Reason) RedactionText() string {
	switch r {
	case ReasonPressure:
		return "disk pressure"
	case ReasonEmergency:
		return "disk pressure (emergency)"
	default:
		return "media retention policy"
	}
}

// Policy holds the eviction thresholds.
type Policy struct {
	ImageRetentionDays    int
	NonImageRetentionDays int
	PressureThreshold     float64
	EmergencyThreshold    float64
}

// ReasonFor returns the pressure-mode label for the current disk usage.
func (p Policy) ReasonFor(usedFraction float64) Reason {
	if usedFraction >= p.EmergencyThreshold {
		return ReasonEmergency
	}
	return ReasonPressure
}

// RetentionCutoffs returns the per-class timestamp cutoffs, in epoch
// milliseconds, for a sweep happening at now.
func (p Policy) RetentionCutoffs(now time.Time) (imageMS, nonImageMS int64) {
	imageMS = now.AddDate(0, 0, -p.ImageRetentionDays).UnixMilli()
	nonImageMS = now.AddDate(0, 0, -p.NonImageRetentionDays).UnixMilli()
	return imageMS, nonImageMS
}

// shouldStop is the pressure-mode termination predicate: stop evicting once
// the used fraction has dropped back under the pressure threshold.
func shouldStop(usedFraction, threshold float64) bool {
	return usedFraction < threshold
}

// Message is a transport-neutral view of a room message event. Attachment
// references are carried as raw URI strings in one of two shapes (a direct
// content reference, or the reference inside an encrypted-file wrapper) and
// resolved by ExtractAttachment.
type Message struct {
	EventID     string
	RoomID      string
	Sender      string
	TimestampMS int64
	URL         string // direct content reference (content.url)
	FileURL     string // encrypted-file wrapper reference (content.file.url)
	Mimetype    string
	SizeBytes   int64
}

// Attachment is a resolved media reference extracted from a message.
type Attachment struct {
	URI       string
	Encrypted bool
}

// ExtractAttachment resolves the attachment shape of a message. Direct
// references win over encrypted wrappers; a message carrying neither is not
// an upload.
func ExtractAttachment(msg Message) (Attachment, bool) {
	if msg.URL != "" {
		return Attachment{URI: msg.URL}, true
	}
	if msg.FileURL != "" {
		return Attachment{URI: msg.FileURL, Encrypted: true}, true
	}
	return Attachment{}, false
}

// Stats accumulates the outcome of a run.
type Stats struct {
	DeletedCount   int
	FreedBytes     int64
	SkippedCount   int // candidates left in the ledger after a failed redaction
	FileFailures   int // blob files that could not be deleted
	RoomsSynced    int
	RoomsFailed    int
	UploadsTracked int // new ledger rows created during sync
}

// RoomClient is the chat-protocol capability the engine consumes.
type RoomClient interface {
	JoinedRooms(ctx context.Context) ([]string, error)
	RecentMessages(ctx context.Context, roomID string, limit int) ([]Message, error)
	Redact(ctx context.Context, roomID, eventID, reason string) error
	SendText(ctx context.Context, roomID, text string) error
}

// Ledger is the upload index the engine selects candidates from.
type Ledger interface {
	Upsert(ctx context.Context, u ledger.Upload) error
	SelectForRetention(ctx context.Context, cutoffImageMS, cutoffNonImageMS int64) ([]ledger.Upload, error)
	SelectForPressure(ctx context.Context) ([]ledger.Upload, error)
	Remove(ctx context.Context, eventID string) error
}

// Locator maps a media reference to zero or more on-disk blob files.
type Locator interface {
	Locate(ref media.Ref) ([]string, error)
}

// DiskProbe reports the used fraction of the filesystem at path.
type DiskProbe func(path string) (float64, error)
