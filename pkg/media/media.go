// Package media defines the media collaborator port. The engine resolves
// media identifiers through a Player and fires playback requests without
// blocking or inspecting handle internals.
package media

import (
	"context"
	"fmt"
)

// Kind partitions the resource table.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Handle is an opaque reference to a resolved media resource.
type Handle struct {
	Kind Kind
	ID   string
	Src  string
}

// PlayOptions control playback of audio and video handles.
type PlayOptions struct {
	Volume float64
	Loop   bool
}

// Player is the port the engine plays media through. Resolve is the only
// call that can block; playback calls are expected to return promptly and
// report failures as errors, which the engine logs and swallows.
type Player interface {
	Resolve(ctx context.Context, kind Kind, id string) (*Handle, error)
	PlayAudio(ctx context.Context, id string, opts PlayOptions) error
	StopAudio(id string) bool
	PlayVideo(ctx context.Context, id string, opts PlayOptions) error
	StopVideo(id string) bool
	StopAll()
}

// ErrNotFound reports an identifier missing from the resource table.
type ErrNotFound struct {
	Kind Kind
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s resource %q does not exist", e.Kind, e.ID)
}

// NopPlayer ignores all media requests. It is the engine default for
// headless use.
type NopPlayer struct{}

var _ Player = NopPlayer{}

func (NopPlayer) Resolve(ctx context.Context, kind Kind, id string) (*Handle, error) {
	return nil, &ErrNotFound{Kind: kind, ID: id}
}

func (NopPlayer) PlayAudio(ctx context.Context, id string, opts PlayOptions) error { return nil }
func (NopPlayer) StopAudio(id string) bool                                         { return false }
func (NopPlayer) PlayVideo(ctx context.Context, id string, opts PlayOptions) error { return nil }
func (NopPlayer) StopVideo(id string) bool                                         { return false }
func (NopPlayer) StopAll()                                                         {}
