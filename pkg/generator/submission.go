package generator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goliatone/go-docgen/pkg/conditional"
	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/queue"
)

// Queue callback names. Persisted tasks re-bind to these after a restart.
const (
	CallbackCreatePDF        = "create_pdf"
	CallbackSendNotification = "send_notification"
	CallbackCleanupPDFs      = "cleanup_pdfs"
)

// OnSubmission builds and dispatches the deferred batch for a new entry: one
// create task per active matching profile, then notification, then cleanup.
// Entries that match no profile dispatch nothing.
func (g *Generator) OnSubmission(ctx context.Context, entry model.Entry) error {
	if g.queue == nil {
		return nil
	}

	form, err := g.forms.GetForm(ctx, entry.FormID)
	if err != nil {
		return wrapLookup("form", entry.FormID, err)
	}
	profiles, err := g.settings.ListPDFs(ctx, entry.FormID)
	if err != nil {
		return fmt.Errorf("generator: list profiles for form %s: %w", entry.FormID, err)
	}

	var tasks []queue.Task
	var recipients []string
	for _, profile := range profiles {
		if !profile.Active {
			continue
		}
		if profile.Conditional != nil && !conditional.Match(profile.Conditional, &entry, form) {
			continue
		}
		tasks = append(tasks, queue.NewTask(CallbackCreatePDF, map[string]any{
			"form":  form.ID,
			"entry": entry.ID,
			"pdf":   profile.ID,
		}))
		recipients = append(recipients, profile.Notifications...)
	}
	if len(tasks) == 0 {
		return nil
	}

	tasks = append(tasks,
		queue.NewTask(CallbackSendNotification, map[string]any{
			"entry":      entry.ID,
			"recipients": recipients,
		}),
		queue.NewTask(CallbackCleanupPDFs, map[string]any{
			"entry": entry.ID,
		}),
	)

	batch := queue.NewBatch(tasks...)
	g.logger.Debug("submission batch built",
		slog.String("entry", entry.ID),
		slog.Int("tasks", len(batch.Tasks)))
	return g.queue.Dispatch(ctx, batch)
}

// RegisterCallbacks binds the generator's queue callbacks into a registry.
// Call once at startup before draining stored batches.
func (g *Generator) RegisterCallbacks(registry *queue.Registry) error {
	if err := registry.Register(CallbackCreatePDF, g.createPDFTask); err != nil {
		return err
	}
	if err := registry.Register(CallbackSendNotification, g.notificationTask); err != nil {
		return err
	}
	return registry.Register(CallbackCleanupPDFs, g.cleanupTask)
}

func (g *Generator) createPDFTask(ctx context.Context, task queue.Task) error {
	formID, _ := task.Args["form"].(string)
	entryID, _ := task.Args["entry"].(string)
	profileID, _ := task.Args["pdf"].(string)

	doc, err := g.Generate(ctx, Request{FormID: formID, EntryID: entryID, ProfileID: profileID})
	if err != nil {
		return err
	}

	dir := g.entryWorkDir(entryID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("generator: create work dir: %w", err)
	}
	path := filepath.Join(dir, doc.Filename)
	if err := os.WriteFile(path, []byte(doc.Markup), 0o644); err != nil {
		return fmt.Errorf("generator: write document: %w", err)
	}
	g.logger.Info("document generated",
		slog.String("entry", entryID),
		slog.String("pdf", profileID),
		slog.String("path", path))
	return nil
}

func (g *Generator) notificationTask(ctx context.Context, task queue.Task) error {
	entryID, _ := task.Args["entry"].(string)
	entry, err := g.forms.GetEntry(ctx, entryID)
	if err != nil {
		return wrapLookup("entry", entryID, err)
	}
	return g.notify(ctx, entry, toStrings(task.Args["recipients"]))
}

// cleanupTask removes the per-entry scratch directory once documents have
// been delivered.
func (g *Generator) cleanupTask(_ context.Context, task queue.Task) error {
	entryID, _ := task.Args["entry"].(string)
	if entryID == "" {
		return nil
	}
	dir := g.entryWorkDir(entryID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("generator: cleanup %s: %w", dir, err)
	}
	return nil
}

func (g *Generator) entryWorkDir(entryID string) string {
	base := g.outputDir
	if base == "" {
		base = filepath.Join(os.TempDir(), "docgen")
	}
	return filepath.Join(base, "tmp", entryID)
}

// toStrings normalises recipients, which arrive as []string in memory but as
// []any after a JSON round trip through the queue store.
func toStrings(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
