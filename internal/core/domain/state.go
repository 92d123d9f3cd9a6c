package domain

import "sort"

const StateVersion = 1

type StateEntry struct {
	Address string            `json:"address"`
	Kind    ResourceKind      `json:"kind"`
	ID      string            `json:"id"`
	Stage   int               `json:"stage"`
	Outputs map[string]string `json:"outputs,omitempty"`
}

// State records which cloud objects this tool manages. The cloud remains the
// source of truth; state only maps addresses to provider ids.
type State struct {
	Version   int               `json:"version"`
	Serial    int64             `json:"serial"`
	Lineage   string            `json:"lineage"`
	Resources []StateEntry      `json:"resources"`
	Outputs   map[string]string `json:"outputs,omitempty"`
}

func NewState(lineage string) *State {
	return &State{Version: StateVersion, Lineage: lineage, Outputs: map[string]string{}}
}

func (s *State) Entry(address string) (StateEntry, bool) {
	for _, e := range s.Resources {
		if e.Address == address {
			return e, true
		}
	}
	return StateEntry{}, false
}

// Put inserts or replaces the entry with the same address.
func (s *State) Put(entry StateEntry) {
	for i, e := range s.Resources {
		if e.Address == entry.Address {
			s.Resources[i] = entry
			return
		}
	}
	s.Resources = append(s.Resources, entry)
	sort.SliceStable(s.Resources, func(i, j int) bool {
		if s.Resources[i].Stage != s.Resources[j].Stage {
			return s.Resources[i].Stage < s.Resources[j].Stage
		}
		return s.Resources[i].Address < s.Resources[j].Address
	})
}

func (s *State) Remove(address string) {
	out := s.Resources[:0]
	for _, e := range s.Resources {
		if e.Address != address {
			out = append(out, e)
		}
	}
	s.Resources = out
}
