// Package runner drives scripted playthroughs against a live API instance.
// Case files describe a session as a list of steps with expectations about
// the resulting view; the runner executes them over HTTP and reports the
// first divergence.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"time"
)

// SessionView mirrors the API's session response.
type SessionView struct {
	ID    string `json:"id"`
	Story string `json:"story"`
	Scene *struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"scene"`
	Choices []struct {
		Index int    `json:"index"`
		Text  string `json:"text"`
	} `json:"choices"`
	State struct {
		CurrentScene string `json:"currentScene"`
		Inventory    []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"inventory"`
		Flags    map[string]any `json:"flags"`
		Counters map[string]int `json:"counters"`
		History  []string       `json:"history"`
	} `json:"state"`
}

// SuiteResult summarizes one suite run.
type SuiteResult struct {
	Job       TestJob
	SessionID string
	Duration  time.Duration
	Steps     int
	Error     error
}

// Runner executes suites against a base URL.
type Runner struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
	Logger  func(format string, args ...any)
}

func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Timeout: 30 * time.Second,
		Logger:  func(string, ...any) {},
	}
}

// LoadSuite reads one case file.
func LoadSuite(path string) (*TestSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	var suite TestSuite
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse case file %s: %w", path, err)
	}
	if suite.Name == "" {
		suite.Name = filepath.Base(path)
	}
	if suite.Story == "" {
		return nil, fmt.Errorf("case file %s has no story", path)
	}
	return &suite, nil
}

// DiscoverSuites loads every .json case file in a directory.
func DiscoverSuites(dir string) ([]TestJob, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var jobs []TestJob
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		suite, err := LoadSuite(path)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, TestJob{Name: suite.Name, File: path, Suite: suite})
	}
	return jobs, nil
}

// RunSuite creates a session, walks the steps and deletes the session.
func (r *Runner) RunSuite(ctx context.Context, suite *TestSuite) (*SuiteResult, error) {
	start := time.Now()
	result := &SuiteResult{}

	view, err := r.createSession(ctx, suite.Story)
	if err != nil {
		result.Error = err
		return result, err
	}
	result.SessionID = view.ID
	defer r.deleteSession(view.ID)

	for i, step := range suite.Steps {
		r.Logger("  step %d: %s", i+1, step.Action)
		view, err = r.runStep(ctx, view.ID, step)
		if err != nil {
			result.Error = fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
			return result, result.Error
		}
		if step.Expect != nil && view != nil {
			if err := checkExpectation(step.Expect, view); err != nil {
				result.Error = fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
				return result, result.Error
			}
		}
		result.Steps++
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) runStep(ctx context.Context, sessionID string, step Step) (*SessionView, error) {
	var body any
	path := "/v1/sessions/" + sessionID

	switch step.Action {
	case "choice":
		path += "/choice"
		body = map[string]int{"index": step.Index}
	case "goto":
		path += "/goto"
		body = map[string]string{"scene": step.Scene}
	case "back":
		path += "/back"
	case "save":
		path += "/save"
		body = map[string]string{"slot": step.Slot}
	case "load":
		path += "/load"
		body = map[string]string{"slot": step.Slot}
	case "reset":
		path += "/reset"
	default:
		return nil, fmt.Errorf("unknown action %q", step.Action)
	}

	wantStatus := step.ExpectStatus
	if wantStatus == 0 {
		wantStatus = http.StatusOK
	}

	resp, err := r.post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d, want %d: %s", resp.StatusCode, wantStatus, data)
	}
	if resp.StatusCode != http.StatusOK {
		// Error responses carry no view; re-read the session instead.
		return r.getSession(ctx, sessionID)
	}

	var view SessionView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("failed to decode session view: %w", err)
	}
	return &view, nil
}

func checkExpectation(want *Expectation, view *SessionView) error {
	if want.Scene != "" {
		got := ""
		if view.Scene != nil {
			got = view.Scene.ID
		}
		if got != want.Scene {
			return fmt.Errorf("scene %q, want %q", got, want.Scene)
		}
	}
	if want.Choices != nil && len(view.Choices) != *want.Choices {
		return fmt.Errorf("%d choices, want %d", len(view.Choices), *want.Choices)
	}
	for _, id := range want.HasItems {
		found := false
		for _, item := range view.State.Inventory {
			if item.ID == id && item.Quantity > 0 {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("inventory missing %q", id)
		}
	}
	for name, wantVal := range want.Flags {
		gotVal, ok := view.State.Flags[name]
		if !ok || !reflect.DeepEqual(gotVal, wantVal) {
			return fmt.Errorf("flag %q = %v, want %v", name, gotVal, wantVal)
		}
	}
	for name, wantVal := range want.Counters {
		if got := view.State.Counters[name]; got != wantVal {
			return fmt.Errorf("counter %q = %d, want %d", name, got, wantVal)
		}
	}
	return nil
}

func (r *Runner) createSession(ctx context.Context, storyFile string) (*SessionView, error) {
	resp, err := r.post(ctx, "/v1/sessions", map[string]string{"story": storyFile})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to create session: status %d: %s", resp.StatusCode, data)
	}
	var view SessionView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("failed to decode session view: %w", err)
	}
	return &view, nil
}

func (r *Runner) getSession(ctx context.Context, sessionID string) (*SessionView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/v1/sessions/"+sessionID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var view SessionView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *Runner) deleteSession(sessionID string) {
	req, err := http.NewRequest(http.MethodDelete, r.BaseURL+"/v1/sessions/"+sessionID, nil)
	if err != nil {
		return
	}
	if resp, err := r.Client.Do(req); err == nil {
		resp.Body.Close()
	}
}

func (r *Runner) post(ctx context.Context, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return r.Client.Do(req)
}
