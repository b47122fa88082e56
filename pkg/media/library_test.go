package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jwebster45206/adventure-engine/pkg/story"
)

func testLibrary() *Library {
	resources := story.Resources{
		Audio: map[string]story.Resource{
			"theme":   {Src: "audio/theme.ogg", Preload: true},
			"foghorn": {Src: "audio/foghorn.ogg"},
		},
		Images: map[string]story.Resource{
			"map": {Src: "img/map.png"},
		},
	}
	return NewLibrary(resources, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLibrary_Resolve(t *testing.T) {
	l := testLibrary()
	ctx := context.Background()

	h, err := l.Resolve(ctx, KindAudio, "theme")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h.Src != "audio/theme.ogg" || h.Kind != KindAudio {
		t.Errorf("Handle = %+v", h)
	}

	// Handles are cached.
	h2, err := l.Resolve(ctx, KindAudio, "theme")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h2 != h {
		t.Error("Expected the cached handle")
	}

	_, err = l.Resolve(ctx, KindVideo, "theme")
	var notFound *ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("Expected ErrNotFound across kinds, got %v", err)
	}
}

func TestLibrary_PlayAndStop(t *testing.T) {
	l := testLibrary()
	ctx := context.Background()

	if err := l.PlayAudio(ctx, "foghorn", PlayOptions{Volume: 1}); err != nil {
		t.Fatalf("PlayAudio: %v", err)
	}
	if !l.Playing(KindAudio, "foghorn") {
		t.Error("Expected foghorn to be live")
	}

	if !l.StopAudio("foghorn") {
		t.Error("Stop of a live id reports true")
	}
	if l.StopAudio("foghorn") {
		t.Error("Stop of a stopped id reports false")
	}

	if err := l.PlayAudio(ctx, "ghost", PlayOptions{}); err == nil {
		t.Error("Playing an unknown id must fail")
	}
}

func TestLibrary_StopAll(t *testing.T) {
	l := testLibrary()
	ctx := context.Background()

	l.PlayAudio(ctx, "theme", PlayOptions{Loop: true})
	l.PlayAudio(ctx, "foghorn", PlayOptions{})
	l.StopAll()

	if l.Playing(KindAudio, "theme") || l.Playing(KindAudio, "foghorn") {
		t.Error("StopAll must clear every live playback")
	}
}
