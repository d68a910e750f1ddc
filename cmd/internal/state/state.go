package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"
)

// CurrentVersion is written to new state files. Unrecognized versions are
// rejected rather than silently migrated.
const CurrentVersion = 1

// Entry records what a declared resource resolved to on the last apply.
type Entry struct {
	// Id is the remote id the resource was created with
	Id string `json:"id"`
	// Hash fingerprints the evaluated configuration at the time of the apply
	Hash string `json:"hash"`
	// Dependencies are the addresses the resource referenced when it was
	// applied, so orphans can be deleted dependents first even after the
	// declarations are gone
	Dependencies []string `json:"dependencies,omitempty"`
	// UpdatedAt is when the entry was last written
	UpdatedAt time.Time `json:"updated_at"`
}

// State maps resource addresses to their last applied outcome. Data sources
// are never recorded because they are read only.
type State struct {
	Version   int              `json:"version"`
	Serial    int              `json:"serial"`
	Resources map[string]Entry `json:"resources"`
}

func NewState() *State {
	return &State{
		Version:   CurrentVersion,
		Resources: map[string]Entry{},
	}
}

// Load reads the state file at the supplied path. A missing file is an empty
// state, not an error.
func Load(path string) (*State, error) {
	contents, err := os.ReadFile(path)

	if errors.Is(err, os.ErrNotExist) {
		return NewState(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	loaded := &State{}

	if err := json.Unmarshal(contents, loaded); err != nil {
		return nil, fmt.Errorf("state file %s is not valid JSON: %w", path, err)
	}

	if loaded.Version != CurrentVersion {
		return nil, fmt.Errorf("state file %s has unsupported version %d", path, loaded.Version)
	}

	if loaded.Resources == nil {
		loaded.Resources = map[string]Entry{}
	}

	return loaded, nil
}

// Save writes the state to the supplied path, bumping the serial.
func (s *State) Save(path string) error {
	s.Serial++

	contents, err := json.MarshalIndent(s, "", "  ")

	if err != nil {
		return err
	}

	if err := os.WriteFile(path, append(contents, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}

	return nil
}

// Record stores the outcome of applying a resource.
func (s *State) Record(address string, id string, hash string, dependencies []string) {
	sorted := append([]string{}, dependencies...)
	sort.Strings(sorted)

	s.Resources[address] = Entry{
		Id:           id,
		Hash:         hash,
		Dependencies: sorted,
		UpdatedAt:    time.Now().UTC(),
	}
}

// Forget removes a resource from the state after it was deleted remotely.
func (s *State) Forget(address string) {
	delete(s.Resources, address)
}

// Entry looks up the recorded outcome for an address.
func (s *State) Entry(address string) (Entry, bool) {
	entry, ok := s.Resources[address]
	return entry, ok
}
