// Package store defines the persistence seams the document pipeline reads
// forms, entries, and generation profiles through. Implementations wrap
// whatever backend holds the submission data; the core only ever sees these
// interfaces.
package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-docgen/pkg/model"
)

// ErrNotFound is returned when a form, entry, or profile id does not exist.
var ErrNotFound = errors.New("store: not found")

// FormStore reads forms and their submitted entries.
type FormStore interface {
	GetForm(ctx context.Context, formID string) (model.Form, error)
	GetEntry(ctx context.Context, entryID string) (model.Entry, error)
	GetEntries(ctx context.Context, formID string) ([]model.Entry, error)
	UpdateForm(ctx context.Context, form model.Form) error
}

// SettingsStore reads and writes generation profiles and exposes global
// options. Option never fails: missing keys yield the supplied fallback.
type SettingsStore interface {
	GetPDF(ctx context.Context, profileID string) (model.Profile, error)
	ListPDFs(ctx context.Context, formID string) ([]model.Profile, error)
	UpdatePDF(ctx context.Context, profile model.Profile) error
	Option(key string, fallback any) any
}
