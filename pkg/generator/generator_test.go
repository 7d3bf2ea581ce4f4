package generator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-docgen/pkg/access"
	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/queue"
	"github.com/goliatone/go-docgen/pkg/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFixture(t *testing.T) (*store.MemoryFormStore, *store.MemorySettingsStore) {
	t.Helper()

	forms := store.NewMemoryFormStore()
	forms.AddForm(model.Form{
		ID:    "1",
		Title: "Service Agreement",
		Fields: []model.FieldDescriptor{
			{ID: "1", Type: model.FieldTypeText, Label: "Note"},
			{ID: "2", Type: model.FieldTypeText, Label: "Reference"},
		},
	})
	forms.AddEntry(model.Entry{
		ID:          "77",
		FormID:      "1",
		IP:          "1.2.3.4",
		DateCreated: time.Now().Add(-time.Minute),
		Values:      map[string]any{"1": "hello world", "2": "REF-9"},
	})

	settings := store.NewMemorySettingsStore(nil)
	settings.AddPDF("1", model.Profile{
		ID:           "a",
		Name:         "Agreement",
		Active:       true,
		PublicAccess: true,
		Filename:     "agreement-{Reference:2}",
	})
	return forms, settings
}

func newTestGenerator(t *testing.T, forms *store.MemoryFormStore, settings *store.MemorySettingsStore, extra ...Option) *Generator {
	t.Helper()
	options := append([]Option{
		WithStores(forms, settings),
		WithLogger(discardLogger()),
	}, extra...)
	g, err := New(options...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestView_RendersDocument(t *testing.T) {
	forms, settings := testFixture(t)
	g := newTestGenerator(t, forms, settings)

	doc, err := g.View(context.Background(), Request{FormID: "1", EntryID: "77", ProfileID: "a"})
	if err != nil {
		t.Fatalf("View: %v", err)
	}

	if !strings.Contains(doc.Markup, "Service Agreement") {
		t.Fatal("form title missing from markup")
	}
	if !strings.Contains(doc.Markup, "hello world") {
		t.Fatal("field value missing from markup")
	}
	if !strings.Contains(doc.Markup, "doc-row") {
		t.Fatal("layout rows missing from markup")
	}
	if doc.Filename != "agreement-REF-9.pdf" {
		t.Fatalf("filename = %q", doc.Filename)
	}
	if doc.ContentType != "text/html; charset=utf-8" {
		t.Fatalf("content type = %q", doc.ContentType)
	}
}

func TestView_InactiveProfileDenied(t *testing.T) {
	forms, settings := testFixture(t)
	settings.AddPDF("1", model.Profile{ID: "off", Name: "Disabled", Active: false, PublicAccess: true})
	g := newTestGenerator(t, forms, settings)

	_, err := g.View(context.Background(), Request{FormID: "1", EntryID: "77", ProfileID: "off"})
	var accessErr *access.Error
	if !errors.As(err, &accessErr) {
		t.Fatalf("error type = %T (%v)", err, err)
	}
	if accessErr.Kind != access.KindAccessDenied {
		t.Fatalf("kind = %q", accessErr.Kind)
	}
}

func TestView_OwnerRestrictionRedirects(t *testing.T) {
	forms, settings := testFixture(t)
	settings.AddPDF("1", model.Profile{ID: "r", Name: "Restricted", Active: true, RestrictOwner: true})
	g := newTestGenerator(t, forms, settings)

	_, err := g.View(context.Background(), Request{FormID: "1", EntryID: "77", ProfileID: "r"})
	var redirect *RedirectError
	if !errors.As(err, &redirect) {
		t.Fatalf("error type = %T (%v)", err, err)
	}
	if redirect.Target != access.SigninTarget {
		t.Fatalf("target = %q", redirect.Target)
	}
}

func TestView_ClockControlsAnonymousWindow(t *testing.T) {
	forms, settings := testFixture(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	forms.AddEntry(model.Entry{
		ID:          "90",
		FormID:      "1",
		IP:          "9.9.9.9",
		DateCreated: created,
		Values:      map[string]any{"1": "late"},
	})
	settings.AddPDF("1", model.Profile{ID: "timed", Name: "Timed", Active: true})

	req := Request{FormID: "1", EntryID: "90", ProfileID: "timed", Caller: model.Caller{SourceIP: "9.9.9.9"}}

	g := newTestGenerator(t, forms, settings, WithClock(func() time.Time { return created.Add(2 * time.Hour) }))
	_, err := g.View(context.Background(), req)
	var accessErr *access.Error
	if !errors.As(err, &accessErr) {
		t.Fatalf("error type = %T (%v)", err, err)
	}
	if accessErr.Kind != access.KindTimeoutExpired {
		t.Fatalf("kind = %q", accessErr.Kind)
	}

	g = newTestGenerator(t, forms, settings, WithClock(func() time.Time { return created.Add(10 * time.Minute) }))
	if _, err := g.View(context.Background(), req); err != nil {
		t.Fatalf("inside the window: %v", err)
	}
}

func TestGenerate_TrustedPathSkipsAccessChain(t *testing.T) {
	forms, settings := testFixture(t)
	settings.AddPDF("1", model.Profile{ID: "off", Name: "Disabled", Active: false})
	g := newTestGenerator(t, forms, settings)

	doc, err := g.Generate(context.Background(), Request{FormID: "1", EntryID: "77", ProfileID: "off"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if doc.Markup == "" {
		t.Fatal("expected markup on the trusted path")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	forms, settings := testFixture(t)
	forms.AddEntry(model.Entry{ID: "88", FormID: "other"})
	g := newTestGenerator(t, forms, settings)

	tests := []struct {
		name string
		req  Request
	}{
		{"missing form id", Request{EntryID: "77", ProfileID: "a"}},
		{"missing entry id", Request{FormID: "1", ProfileID: "a"}},
		{"missing pdf id", Request{FormID: "1", EntryID: "77"}},
		{"unknown pdf id", Request{FormID: "1", EntryID: "77", ProfileID: "nope"}},
		{"unknown entry id", Request{FormID: "1", EntryID: "404", ProfileID: "a"}},
		{"entry form mismatch", Request{FormID: "1", EntryID: "88", ProfileID: "a"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.View(context.Background(), tc.req)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("error type = %T (%v)", err, err)
			}
		})
	}
}

func TestOnSubmission_DispatchesMatchingProfiles(t *testing.T) {
	forms, settings := testFixture(t)
	settings.AddPDF("1", model.Profile{ID: "b", Name: "Second", Active: true})
	settings.AddPDF("1", model.Profile{ID: "inactive", Name: "Off", Active: false})
	settings.AddPDF("1", model.Profile{
		ID:     "cond",
		Name:   "Conditional",
		Active: true,
		Conditional: &model.ConditionalLogic{
			Action: model.ActionShow,
			Logic:  model.LogicAll,
			Rules:  []model.Rule{{FieldID: "2", Operator: model.OperatorIs, Value: "NO-MATCH"}},
		},
	})

	var order []string
	registry := queue.NewRegistry()
	record := func(name string) queue.CallbackFunc {
		return func(_ context.Context, task queue.Task) error {
			label := name
			if pdf, ok := task.Args["pdf"].(string); ok {
				label += ":" + pdf
			}
			order = append(order, label)
			return nil
		}
	}
	registry.MustRegister(CallbackCreatePDF, record(CallbackCreatePDF))
	registry.MustRegister(CallbackSendNotification, record(CallbackSendNotification))
	registry.MustRegister(CallbackCleanupPDFs, record(CallbackCleanupPDFs))

	q := queue.New(registry, queue.WithLogger(discardLogger()))
	g := newTestGenerator(t, forms, settings, WithQueue(q))

	entry, err := forms.GetEntry(context.Background(), "77")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if err := g.OnSubmission(context.Background(), entry); err != nil {
		t.Fatalf("OnSubmission: %v", err)
	}

	want := []string{
		CallbackCreatePDF + ":a",
		CallbackCreatePDF + ":b",
		CallbackSendNotification,
		CallbackCleanupPDFs,
	}
	if len(order) != len(want) {
		t.Fatalf("invocations = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("invocation %d = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestOnSubmission_NoMatchingProfileDispatchesNothing(t *testing.T) {
	forms := store.NewMemoryFormStore()
	forms.AddForm(model.Form{ID: "2", Title: "Empty"})
	forms.AddEntry(model.Entry{ID: "5", FormID: "2"})
	settings := store.NewMemorySettingsStore(nil)
	settings.AddPDF("2", model.Profile{ID: "x", Active: false})

	invoked := 0
	registry := queue.NewRegistry()
	registry.MustRegister(CallbackCreatePDF, func(context.Context, queue.Task) error {
		invoked++
		return nil
	})
	registry.MustRegister(CallbackSendNotification, func(context.Context, queue.Task) error {
		invoked++
		return nil
	})
	registry.MustRegister(CallbackCleanupPDFs, func(context.Context, queue.Task) error {
		invoked++
		return nil
	})

	q := queue.New(registry, queue.WithLogger(discardLogger()))
	g := newTestGenerator(t, forms, settings, WithQueue(q))

	entry, _ := forms.GetEntry(context.Background(), "5")
	if err := g.OnSubmission(context.Background(), entry); err != nil {
		t.Fatalf("OnSubmission: %v", err)
	}
	if invoked != 0 {
		t.Fatalf("no-profile submission invoked %d callbacks", invoked)
	}
}

func TestView_DefaultTemplateFromOptions(t *testing.T) {
	forms, settings := testFixture(t)
	settings.AddPDF("1", model.Profile{ID: "plain", Name: "Plain", Active: true, PublicAccess: true})
	g := newTestGenerator(t, forms, settings)

	doc, err := g.View(context.Background(), Request{FormID: "1", EntryID: "77", ProfileID: "plain"})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if !strings.Contains(doc.Markup, "Service Agreement") {
		t.Fatal("default template did not render")
	}
}
