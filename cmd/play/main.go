package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	istorage "github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/jwebster45206/adventure-engine/pkg/media"
	"github.com/jwebster45206/adventure-engine/pkg/storage"
)

func main() {
	dataDir := flag.String("data", getEnv("DATA_DIR", "./data/stories"), "directory containing story files")
	storyFile := flag.String("story", "", "story file to play (skips the selection prompt)")
	flag.Parse()

	// The engine logs through slog; in a terminal UI that output would
	// fight the renderer, so it is discarded unless DEBUG_LOG points at
	// a file.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if path := os.Getenv("DEBUG_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	store := istorage.NewStoryStore(*dataDir, logger)

	filename := *storyFile
	if filename == "" {
		var err error
		filename, err = selectStory(store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	st, err := store.GetStory(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load story: %v\n", err)
		os.Exit(1)
	}

	library := media.NewLibrary(st.Resources, logger)
	library.Preload(context.Background())

	eng := engine.New(st,
		engine.WithLogger(logger),
		engine.WithSaveStore(storage.NewMemoryStore()),
		engine.WithMediaPlayer(library),
	)
	defer eng.Close()

	// Example of the extension API: stories can reference this handler
	// with {"type": "CUSTOM", "handler": "coin_flip"}.
	eng.RegisterAction("coin_flip", func(rt *engine.Runtime) bool {
		if rand.Intn(2) == 0 {
			rt.SetFlag("coinFlip", "heads")
		} else {
			rt.SetFlag("coinFlip", "tails")
		}
		return true
	})

	p := tea.NewProgram(NewPlayerUI(eng), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func selectStory(store *istorage.StoryStore) (string, error) {
	stories, err := store.ListStories()
	if err != nil || len(stories) == 0 {
		return "", fmt.Errorf("no stories found: %v", err)
	}

	titles := make([]string, 0, len(stories))
	for title := range stories {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	fmt.Println("Available Stories:")
	for i, title := range titles {
		fmt.Printf("  %d - %s (%s)\n", i+1, title, stories[title])
	}
	fmt.Print("\nSelect a story by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(titles) {
		return "", fmt.Errorf("invalid selection")
	}

	return stories[titles[choice-1]], nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
