// Package ledger keeps the durable per-viewer record of complaints already
// reported as fake. Once an ID is recorded it stays recorded; the engine
// uses this to guarantee a report action is never re-offered or re-sent,
// even when a reload races ahead of the server's count update.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the minimal key-value contract the ledger needs. The production
// implementation is Redis; tests substitute an in-memory fake.
type Store interface {
	// Get returns the raw value for key, or "" when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Ledger struct {
	store  Store
	prefix string
	log    zerolog.Logger
}

func New(store Store, prefix string, log zerolog.Logger) *Ledger {
	if prefix == "" {
		prefix = "reported"
	}
	return &Ledger{store: store, prefix: prefix, log: log}
}

// Reported returns every complaint ID the viewer has reported. A missing
// key, corrupt JSON, or a non-array payload reads as an empty set; the
// ledger never throws over its own contents.
func (l *Ledger) Reported(ctx context.Context, viewerID uuid.UUID) ([]uuid.UUID, error) {
	raw, err := l.store.Get(ctx, l.key(viewerID))
	if err != nil {
		return nil, fmt.Errorf("ledger read: %w", err)
	}
	return l.decode(raw), nil
}

// Contains reports whether the viewer has already reported the complaint.
func (l *Ledger) Contains(ctx context.Context, viewerID, complaintID uuid.UUID) (bool, error) {
	ids, err := l.Reported(ctx, viewerID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == complaintID {
			return true, nil
		}
	}
	return false, nil
}

// Add records a reported complaint via read-modify-write, de-duplicating by
// ID and preserving insertion order.
func (l *Ledger) Add(ctx context.Context, viewerID, complaintID uuid.UUID) error {
	ids, err := l.Reported(ctx, viewerID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == complaintID {
			return nil
		}
	}
	ids = append(ids, complaintID)

	encoded, err := json.Marshal(encodeIDs(ids))
	if err != nil {
		return fmt.Errorf("ledger encode: %w", err)
	}
	if err := l.store.Set(ctx, l.key(viewerID), string(encoded)); err != nil {
		return fmt.Errorf("ledger write: %w", err)
	}
	return nil
}

func (l *Ledger) key(viewerID uuid.UUID) string {
	return l.prefix + ":" + viewerID.String()
}

func (l *Ledger) decode(raw string) []uuid.UUID {
	if raw == "" {
		return nil
	}
	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		l.log.Warn().Str("payload", raw).Msg("ledger payload is not a JSON array, treating as empty")
		return nil
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		id, err := uuid.Parse(entry)
		if err != nil {
			l.log.Warn().Str("entry", entry).Msg("skipping unparsable ledger entry")
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func encodeIDs(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
