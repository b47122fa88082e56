package runner

// TestSuite is one scripted playthrough loaded from a case file.
type TestSuite struct {
	Name  string `json:"name"`
	Story string `json:"story"`
	Steps []Step `json:"steps"`
}

// Step is one API call against the session, optionally with expectations
// about the resulting view.
type Step struct {
	// Action is one of: choice, goto, back, save, load, reset.
	Action string `json:"action"`

	// choice
	Index int `json:"index,omitempty"`

	// goto
	Scene string `json:"scene,omitempty"`

	// save / load
	Slot string `json:"slot,omitempty"`

	// ExpectStatus overrides the default expectation of 200. Conflict
	// steps (unavailable choices, unknown scenes) set this to 409.
	ExpectStatus int `json:"expectStatus,omitempty"`

	Expect *Expectation `json:"expect,omitempty"`
}

// Expectation describes the session view after a step.
type Expectation struct {
	Scene    string         `json:"scene,omitempty"`
	Choices  *int           `json:"choices,omitempty"`
	HasItems []string       `json:"hasItems,omitempty"`
	Flags    map[string]any `json:"flags,omitempty"`
	Counters map[string]int `json:"counters,omitempty"`
}

// TestJob pairs a suite with its source file for reporting.
type TestJob struct {
	Name  string
	File  string
	Suite *TestSuite
}
