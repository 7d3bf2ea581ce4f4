package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-docgen/pkg/model"
)

func TestMemoryFormStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFormStore()
	s.AddForm(model.Form{ID: "1", Title: "Order"})
	s.AddEntry(model.Entry{ID: "77", FormID: "1"})
	s.AddEntry(model.Entry{ID: "78", FormID: "1"})

	form, err := s.GetForm(ctx, "1")
	if err != nil {
		t.Fatalf("GetForm: %v", err)
	}
	if form.Title != "Order" {
		t.Fatalf("title = %q", form.Title)
	}

	entries, err := s.GetEntries(ctx, "1")
	if err != nil {
		t.Fatalf("GetEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	if _, err := s.GetEntry(ctx, "99"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing entry error = %v", err)
	}
}

func TestMemorySettingsStore_ProfilesByForm(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySettingsStore(nil)
	s.AddPDF("1", model.Profile{ID: "a", Name: "Invoice", Active: true})
	s.AddPDF("1", model.Profile{ID: "b", Name: "Receipt"})
	s.AddPDF("2", model.Profile{ID: "c", Name: "Other"})

	profiles, err := s.ListPDFs(ctx, "1")
	if err != nil {
		t.Fatalf("ListPDFs: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(profiles))
	}

	if got := s.Option("missing.key", "fallback"); got != "fallback" {
		t.Fatalf("nil options should fall back, got %v", got)
	}
}

func TestOptions_DottedKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "options.toml")
	content := `currency = "$"

[pdf]
default_template = "zadani"

[pdf.retry]
max_attempts = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write options: %v", err)
	}

	options, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}

	if got := options.Get("currency", "?"); got != "$" {
		t.Fatalf("currency = %v", got)
	}
	if got := options.Get("pdf.default_template", "?"); got != "zadani" {
		t.Fatalf("default_template = %v", got)
	}
	if got := options.Get("pdf.retry.max_attempts", 0); got != int64(3) {
		t.Fatalf("max_attempts = %v (%T)", got, got)
	}
	if got := options.Get("pdf.missing", "fallback"); got != "fallback" {
		t.Fatalf("missing key = %v", got)
	}
	if got := options.Get("currency.nested", "fallback"); got != "fallback" {
		t.Fatalf("non-table traversal = %v", got)
	}
}

func TestOptions_MissingFileAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.toml")

	options, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions on missing file: %v", err)
	}

	options.Set("pdf.default_template", "focus-gravity")
	if err := options.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Get("pdf.default_template", "?"); got != "focus-gravity" {
		t.Fatalf("persisted value = %v", got)
	}
}
