package builder

import "encoding/json"

// UIState tracks which builder panels are expanded, keyed by field UID
// so the state survives reordering. It is serialized as one JSON blob
// on the report row.
type UIState struct {
	Section  map[string]bool `json:"section,omitempty"`
	Options  map[string]bool `json:"options,omitempty"`
	Advanced map[string]bool `json:"advanced,omitempty"`
}

func NewUIState() UIState {
	return UIState{
		Section:  map[string]bool{},
		Options:  map[string]bool{},
		Advanced: map[string]bool{},
	}
}

// DecodeUIState parses a stored blob. Empty or malformed input yields a
// fresh state rather than an error; panel state is never worth failing
// a request over.
func DecodeUIState(raw string) UIState {
	s := NewUIState()
	if raw == "" {
		return s
	}
	var in UIState
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return s
	}
	for k, v := range in.Section {
		s.Section[k] = v
	}
	for k, v := range in.Options {
		s.Options[k] = v
	}
	for k, v := range in.Advanced {
		s.Advanced[k] = v
	}
	return s
}

func (s UIState) Encode() string {
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(b)
}

// Prune drops state for fields no longer present in the document.
func (s *UIState) Prune(d *Document) {
	live := make(map[string]bool)
	for _, f := range d.Fields() {
		live[f.UID] = true
	}
	for _, m := range []map[string]bool{s.Section, s.Options, s.Advanced} {
		for uid := range m {
			if !live[uid] {
				delete(m, uid)
			}
		}
	}
}
