// Package docgen turns stored form submissions into rendered documents. The
// root package re-exports the pipeline's main seams; the heavy lifting lives
// under pkg/.
package docgen

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-docgen/pkg/generator"
	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/queue"
	"github.com/goliatone/go-docgen/pkg/store"
	"github.com/goliatone/go-docgen/pkg/templates"
)

// Version is the running system version templates declare compatibility
// against through their required_version header.
const Version = templates.RunningVersion

// Request identifies the document to produce and who is asking.
type Request = generator.Request

// Document is a rendered document ready for delivery.
type Document = generator.Document

// Form, Entry, and Profile are the domain inputs of the pipeline.
type (
	Form    = model.Form
	Entry   = model.Entry
	Profile = model.Profile
)

// NewGenerator exposes the pipeline constructor from the top-level module.
func NewGenerator(options ...generator.Option) (*generator.Generator, error) {
	return generator.New(options...)
}

// ViewDocument runs the access-gated render path for a single request. It is
// the simplest entry point for callers that just want a document.
func ViewDocument(ctx context.Context, forms store.FormStore, settings store.SettingsStore, req Request, options ...generator.Option) (Document, error) {
	gen, err := generator.New(append([]generator.Option{
		generator.WithStores(forms, settings),
	}, options...)...)
	if err != nil {
		return Document{}, err
	}
	return gen.View(ctx, req)
}

// CoreTemplates exposes the bundled core template set so callers can reuse or
// extend it without importing the templates package directly.
func CoreTemplates() fs.FS {
	return templates.CoreFS()
}

// NewCallbackRegistry builds a queue callback registry with the generator's
// callbacks bound, ready for draining stored batches at startup.
func NewCallbackRegistry(gen *generator.Generator) (*queue.Registry, error) {
	registry := queue.NewRegistry()
	if err := gen.RegisterCallbacks(registry); err != nil {
		return nil, err
	}
	return registry, nil
}
