// Package storage defines the persistence collaborator port for save
// slots, and the envelope format save blobs travel in.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// FormatVersion is the save envelope version this code writes. Loading a
// blob with a different version is a warning at the engine, not a failure.
const FormatVersion = "1.0"

// SaveMetadata describes when and under which format a snapshot was saved.
type SaveMetadata struct {
	Version   string `json:"version"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	SaveDate  string `json:"saveDate"`  // RFC 3339
}

// SaveEnvelope is the stored blob: a state snapshot plus metadata. The
// metadata key keeps its historical double-underscore name so existing
// saves remain readable.
type SaveEnvelope struct {
	State    *state.GameState `json:"state"`
	Metadata SaveMetadata     `json:"__metadata"`
}

// NewEnvelope wraps a snapshot with fresh metadata.
func NewEnvelope(gs *state.GameState) *SaveEnvelope {
	now := time.Now()
	return &SaveEnvelope{
		State: gs,
		Metadata: SaveMetadata{
			Version:   FormatVersion,
			Timestamp: now.UnixMilli(),
			SaveDate:  now.UTC().Format(time.RFC3339),
		},
	}
}

// Encode serializes the envelope.
func (e *SaveEnvelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode save envelope: %w", err)
	}
	return data, nil
}

// DecodeEnvelope parses a stored blob. A blob without a state record is
// corrupt.
func DecodeEnvelope(data []byte) (*SaveEnvelope, error) {
	var e SaveEnvelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode save envelope: %w", err)
	}
	if e.State == nil {
		return nil, fmt.Errorf("save envelope has no state record")
	}
	return &e, nil
}

// SaveInfo summarizes one stored slot for listings.
type SaveInfo struct {
	Slot         string       `json:"slot"`
	CurrentScene string       `json:"currentScene,omitempty"`
	Metadata     SaveMetadata `json:"metadata"`
}

// SaveStore is the persistence port the engine saves and loads through.
// LoadState returns (nil, nil, nil) for an absent slot: nothing to load is
// a normal outcome, distinct from a corrupt blob which returns an error.
type SaveStore interface {
	Ping(ctx context.Context) error
	Close() error

	SaveState(ctx context.Context, slot string, gs *state.GameState) error
	LoadState(ctx context.Context, slot string) (*state.GameState, *SaveMetadata, error)
	DeleteSave(ctx context.Context, slot string) error
	ListSaves(ctx context.Context) ([]SaveInfo, error)
}
