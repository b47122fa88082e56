package story

import "encoding/json"

// Resources is the media table of a story, partitioned by kind.
type Resources struct {
	Images map[string]Resource `json:"images,omitempty"`
	Audio  map[string]Resource `json:"audio,omitempty"`
	Video  map[string]Resource `json:"video,omitempty"`
}

// Resource describes one media source. The authoring format allows either
// a bare source string or an object with options, so both are accepted on
// input. A resource that was authored as a bare string marshals back to a
// bare string.
type Resource struct {
	Src     string `json:"src"`
	Preload bool   `json:"preload,omitempty"`
	Type    string `json:"type,omitempty"`

	bare bool
}

// UnmarshalJSON accepts either "path/to/file.png" or
// {"src": "...", "preload": true}.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var src string
	if err := json.Unmarshal(data, &src); err == nil {
		r.Src = src
		r.bare = true
		return nil
	}

	type alias Resource
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Resource(a)
	return nil
}

// MarshalJSON emits the bare-string form when the resource carries no
// options, keeping round-trips byte-compatible with hand-authored files.
func (r Resource) MarshalJSON() ([]byte, error) {
	if r.bare && !r.Preload && r.Type == "" {
		return json.Marshal(r.Src)
	}
	type alias Resource
	return json.Marshal(alias(r))
}
