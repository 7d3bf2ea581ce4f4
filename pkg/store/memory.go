package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-docgen/pkg/model"
)

// MemoryFormStore is a map-backed FormStore for tests and the CLI's
// file-based mode.
type MemoryFormStore struct {
	mu      sync.RWMutex
	forms   map[string]model.Form
	entries map[string]model.Entry
	byForm  map[string][]string
}

// NewMemoryFormStore creates an empty store.
func NewMemoryFormStore() *MemoryFormStore {
	return &MemoryFormStore{
		forms:   make(map[string]model.Form),
		entries: make(map[string]model.Entry),
		byForm:  make(map[string][]string),
	}
}

// AddForm registers a form.
func (s *MemoryFormStore) AddForm(form model.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms[form.ID] = form
}

// AddEntry registers an entry under its form.
func (s *MemoryFormStore) AddEntry(entry model.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.ID]; !exists {
		s.byForm[entry.FormID] = append(s.byForm[entry.FormID], entry.ID)
	}
	s.entries[entry.ID] = entry
}

func (s *MemoryFormStore) GetForm(_ context.Context, formID string) (model.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	form, ok := s.forms[formID]
	if !ok {
		return model.Form{}, fmt.Errorf("form %q: %w", formID, ErrNotFound)
	}
	return form, nil
}

func (s *MemoryFormStore) GetEntry(_ context.Context, entryID string) (model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[entryID]
	if !ok {
		return model.Entry{}, fmt.Errorf("entry %q: %w", entryID, ErrNotFound)
	}
	return entry, nil
}

func (s *MemoryFormStore) GetEntries(_ context.Context, formID string) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byForm[formID]
	out := make([]model.Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.entries[id])
	}
	return out, nil
}

func (s *MemoryFormStore) UpdateForm(_ context.Context, form model.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[form.ID]; !ok {
		return fmt.Errorf("form %q: %w", form.ID, ErrNotFound)
	}
	s.forms[form.ID] = form
	return nil
}

var _ FormStore = (*MemoryFormStore)(nil)

// MemorySettingsStore is a map-backed SettingsStore. Options may be backed by
// a loaded TOML file or left nil for all-fallback behavior.
type MemorySettingsStore struct {
	mu       sync.RWMutex
	profiles map[string]model.Profile
	byForm   map[string][]string
	options  *Options
}

// NewMemorySettingsStore creates an empty store. A nil options set is legal.
func NewMemorySettingsStore(options *Options) *MemorySettingsStore {
	return &MemorySettingsStore{
		profiles: make(map[string]model.Profile),
		byForm:   make(map[string][]string),
		options:  options,
	}
}

// AddPDF registers a generation profile under a form.
func (s *MemorySettingsStore) AddPDF(formID string, profile model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[profile.ID]; !exists {
		s.byForm[formID] = append(s.byForm[formID], profile.ID)
	}
	s.profiles[profile.ID] = profile
}

func (s *MemorySettingsStore) GetPDF(_ context.Context, profileID string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[profileID]
	if !ok {
		return model.Profile{}, fmt.Errorf("profile %q: %w", profileID, ErrNotFound)
	}
	return profile, nil
}

func (s *MemorySettingsStore) ListPDFs(_ context.Context, formID string) ([]model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byForm[formID]
	out := make([]model.Profile, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.profiles[id])
	}
	return out, nil
}

func (s *MemorySettingsStore) UpdatePDF(_ context.Context, profile model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.ID]; !ok {
		return fmt.Errorf("profile %q: %w", profile.ID, ErrNotFound)
	}
	s.profiles[profile.ID] = profile
	return nil
}

func (s *MemorySettingsStore) Option(key string, fallback any) any {
	s.mu.RLock()
	options := s.options
	s.mu.RUnlock()
	if options == nil {
		return fallback
	}
	return options.Get(key, fallback)
}

var _ SettingsStore = (*MemorySettingsStore)(nil)
