package media

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jwebster45206/adventure-engine/pkg/story"
)

// Library resolves identifiers against a story's resource table and caches
// handles. Playback tracks which ids are live so Stop calls can report
// whether anything was playing; actual output is delegated to whatever
// frontend wraps the library. On its own the Library logs playback, which
// is what the terminal player and tests want.
type Library struct {
	mu        sync.Mutex
	resources story.Resources
	cache     map[Kind]map[string]*Handle
	playing   map[Kind]map[string]bool
	logger    *slog.Logger
}

var _ Player = (*Library)(nil)

// NewLibrary builds a library over a story's resources. A nil logger falls
// back to slog.Default.
func NewLibrary(resources story.Resources, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		resources: resources,
		cache:     make(map[Kind]map[string]*Handle),
		playing:   make(map[Kind]map[string]bool),
		logger:    logger,
	}
}

func (l *Library) table(kind Kind) map[string]story.Resource {
	switch kind {
	case KindImage:
		return l.resources.Images
	case KindAudio:
		return l.resources.Audio
	case KindVideo:
		return l.resources.Video
	}
	return nil
}

// Resolve returns a cached handle or builds one from the resource table.
func (l *Library) Resolve(ctx context.Context, kind Kind, id string) (*Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h, ok := l.cache[kind][id]; ok {
		return h, nil
	}
	res, ok := l.table(kind)[id]
	if !ok {
		return nil, &ErrNotFound{Kind: kind, ID: id}
	}

	h := &Handle{Kind: kind, ID: id, Src: res.Src}
	if l.cache[kind] == nil {
		l.cache[kind] = make(map[string]*Handle)
	}
	l.cache[kind][id] = h
	return h, nil
}

// Preload resolves every resource marked for preloading. Failures are
// logged and skipped.
func (l *Library) Preload(ctx context.Context) {
	for kind, table := range map[Kind]map[string]story.Resource{
		KindImage: l.resources.Images,
		KindAudio: l.resources.Audio,
		KindVideo: l.resources.Video,
	} {
		for id, res := range table {
			if !res.Preload {
				continue
			}
			if _, err := l.Resolve(ctx, kind, id); err != nil {
				l.logger.Warn("Failed to preload resource", "kind", kind, "id", id, "error", err)
			}
		}
	}
}

func (l *Library) play(ctx context.Context, kind Kind, id string, opts PlayOptions) error {
	if _, err := l.Resolve(ctx, kind, id); err != nil {
		return err
	}
	l.mu.Lock()
	if l.playing[kind] == nil {
		l.playing[kind] = make(map[string]bool)
	}
	l.playing[kind][id] = true
	l.mu.Unlock()

	l.logger.Debug("Media playback started", "kind", kind, "id", id, "volume", opts.Volume, "loop", opts.Loop)
	return nil
}

func (l *Library) stop(kind Kind, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.playing[kind][id] {
		return false
	}
	delete(l.playing[kind], id)
	l.logger.Debug("Media playback stopped", "kind", kind, "id", id)
	return true
}

func (l *Library) PlayAudio(ctx context.Context, id string, opts PlayOptions) error {
	return l.play(ctx, KindAudio, id, opts)
}

func (l *Library) StopAudio(id string) bool {
	return l.stop(KindAudio, id)
}

func (l *Library) PlayVideo(ctx context.Context, id string, opts PlayOptions) error {
	return l.play(ctx, KindVideo, id, opts)
}

func (l *Library) StopVideo(id string) bool {
	return l.stop(KindVideo, id)
}

// StopAll clears every live playback.
func (l *Library) StopAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.playing = make(map[Kind]map[string]bool)
}

// Playing reports whether the given id is currently live.
func (l *Library) Playing(kind Kind, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.playing[kind][id]
}
