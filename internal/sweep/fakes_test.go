package sweep

import (
	"context"
	"errors"
	"slices"

	"github.com/catcord/sweeper/internal/ledger"
	"github.com/catcord/sweeper/internal/logger"
	"github.com/catcord/sweeper/internal/media"
)

func testLogger() *logger.Logger {
	log, err := logger.New(logger.Config{Level: "error", Format: "text", Output: "stderr"})
	if err != nil {
		panic(err)
	}
	return log
}

// fakeLedger is an in-memory Ledger with insert-if-absent semantics. Select
// results are returned in insertion order; ordering itself is covered by the
// ledger package tests.
type fakeLedger struct {
	uploads    []ledger.Upload
	upsertErr  error
	removeErr  error
	removed    []string
	selectErrs error
}

func (f *fakeLedger) Upsert(_ context.Context, u ledger.Upload) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, existing := range f.uploads {
		if existing.EventID == u.EventID {
			return nil
		}
	}
	f.uploads = append(f.uploads, u)
	return nil
}

func (f *fakeLedger) SelectForRetention(_ context.Context, cutoffImageMS, cutoffNonImageMS int64) ([]ledger.Upload, error) {
	if f.selectErrs != nil {
		return nil, f.selectErrs
	}
	var out []ledger.Upload
	for _, u := range f.uploads {
		if u.IsImage() && u.TimestampMS < cutoffImageMS {
			out = append(out, u)
		} else if !u.IsImage() && u.TimestampMS < cutoffNonImageMS {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeLedger) SelectForPressure(_ context.Context) ([]ledger.Upload, error) {
	if f.selectErrs != nil {
		return nil, f.selectErrs
	}
	return slices.Clone(f.uploads), nil
}

func (f *fakeLedger) Remove(_ context.Context, eventID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, eventID)
	f.uploads = slices.DeleteFunc(slices.Clone(f.uploads), func(u ledger.Upload) bool {
		return u.EventID == eventID
	})
	return nil
}

func (f *fakeLedger) contains(eventID string) bool {
	for _, u := range f.uploads {
		if u.EventID == eventID {
			return true
		}
	}
	return false
}

// fakeClient is an in-memory RoomClient.
type fakeClient struct {
	rooms      []string
	roomsErr   error
	messages   map[string][]Message
	fetchErrs  map[string]error
	redactions []redaction
	redactErr  map[string]error // by event id
	sent       []string
	sendErr    error
}

type redaction struct {
	roomID  string
	eventID string
	reason  string
}

func (f *fakeClient) JoinedRooms(context.Context) ([]string, error) {
	if f.roomsErr != nil {
		return nil, f.roomsErr
	}
	return f.rooms, nil
}

func (f *fakeClient) RecentMessages(_ context.Context, roomID string, _ int) ([]Message, error) {
	if err := f.fetchErrs[roomID]; err != nil {
		return nil, err
	}
	return f.messages[roomID], nil
}

func (f *fakeClient) Redact(_ context.Context, roomID, eventID, reason string) error {
	if err := f.redactErr[eventID]; err != nil {
		return err
	}
	f.redactions = append(f.redactions, redaction{roomID: roomID, eventID: eventID, reason: reason})
	return nil
}

func (f *fakeClient) SendText(_ context.Context, _ string, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}

// fakeLocator maps media ids to fixed paths.
type fakeLocator struct {
	paths map[string][]string // by media id
	err   error
}

func (f *fakeLocator) Locate(ref media.Ref) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.paths[ref.MediaID], nil
}

// steppingProbe returns a fixed sequence of readings, repeating the last one.
type steppingProbe struct {
	readings []float64
	calls    int
}

func (p *steppingProbe) probe(string) (float64, error) {
	i := p.calls
	p.calls++
	if i >= len(p.readings) {
		i = len(p.readings) - 1
	}
	if i < 0 {
		return 0, errors.New("no readings configured")
	}
	return p.readings[i], nil
}
