// Package generator orchestrates the document pipeline: validate the
// request, run the access chain, resolve the template and settings, assemble
// field markup and form data, and render the final document.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-docgen/pkg/access"
	"github.com/goliatone/go-docgen/pkg/fields"
	"github.com/goliatone/go-docgen/pkg/layout"
	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/queue"
	"github.com/goliatone/go-docgen/pkg/store"
	"github.com/goliatone/go-docgen/pkg/templates"
)

// DefaultTemplate is used when neither the profile nor the options file names
// a template.
const DefaultTemplate = "zadani"

// Request identifies the document to produce and who is asking.
type Request struct {
	FormID    string
	EntryID   string
	ProfileID string
	Caller    model.Caller
}

// Document is a rendered document ready for delivery or conversion.
type Document struct {
	Markup      string
	Filename    string
	ContentType string
}

// ValidationError marks a malformed or dangling reference in the request. It
// is fatal to the single request and surfaced immediately.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return "generator: invalid request: " + e.Detail
}

// RedirectError instructs the caller to send the user through an
// authentication step before retrying.
type RedirectError struct {
	Target string
}

func (e *RedirectError) Error() string {
	return "generator: authentication required, redirect to " + e.Target
}

// Option configures a Generator.
type Option func(*Generator)

// WithStores sets the form and settings collaborators.
func WithStores(forms store.FormStore, settings store.SettingsStore) Option {
	return func(g *Generator) {
		g.forms = forms
		g.settings = settings
	}
}

// WithFieldRegistry replaces the default field variant registry.
func WithFieldRegistry(registry *fields.Registry) Option {
	return func(g *Generator) {
		if registry != nil {
			g.registry = registry
		}
	}
}

// WithResolver sets the template resolver.
func WithResolver(resolver *templates.Resolver) Option {
	return func(g *Generator) {
		if resolver != nil {
			g.resolver = resolver
		}
	}
}

// WithEngine sets the template engine.
func WithEngine(engine templates.TemplateRenderer) Option {
	return func(g *Generator) {
		if engine != nil {
			g.engine = engine
		}
	}
}

// WithAccessChain replaces the default access check chain.
func WithAccessChain(chain *access.Chain) Option {
	return func(g *Generator) {
		if chain != nil {
			g.chain = chain
		}
	}
}

// WithQueue attaches the deferred-work queue used by the submission hook.
func WithQueue(q *queue.Queue) Option {
	return func(g *Generator) { g.queue = q }
}

// WithThemeSelector passes a go-theme selector so profile theme choices
// resolve to token sets ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(g *Generator) { g.themes = selector }
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithClock overrides time.Now for access evaluation.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.clock = now
		}
	}
}

// WithSanitizer sets the policy applied to HTML-bearing field content.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(g *Generator) { g.sanitizer = policy }
}

// WithNotifier sets the submission notification hook.
func WithNotifier(notify NotifyFunc) Option {
	return func(g *Generator) {
		if notify != nil {
			g.notify = notify
		}
	}
}

// WithOutputDir sets where queue-generated documents are written.
func WithOutputDir(dir string) Option {
	return func(g *Generator) { g.outputDir = dir }
}

// NotifyFunc delivers a submission notification to its recipients.
type NotifyFunc func(ctx context.Context, entry model.Entry, recipients []string) error

// Generator runs the end-to-end document pipeline.
type Generator struct {
	forms     store.FormStore
	settings  store.SettingsStore
	registry  *fields.Registry
	resolver  *templates.Resolver
	engine    templates.TemplateRenderer
	chain     *access.Chain
	queue     *queue.Queue
	themes    theme.ThemeSelector
	logger    *slog.Logger
	clock     func() time.Time
	sanitizer *bluemonday.Policy
	notify    NotifyFunc
	outputDir string
}

// New builds a Generator. Stores must be supplied; everything else has a
// working default.
func New(options ...Option) (*Generator, error) {
	g := &Generator{
		registry: fields.DefaultRegistry(),
		resolver: templates.NewResolver(),
		chain:    access.NewChain(),
		logger:   slog.Default(),
		clock:    time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}
	if g.forms == nil || g.settings == nil {
		return nil, errors.New("generator: form and settings stores are required")
	}
	if g.engine == nil {
		engine, err := templates.NewEngine(templates.WithTemplateFS(templates.CoreFS()))
		if err != nil {
			return nil, fmt.Errorf("generator: default engine: %w", err)
		}
		g.engine = engine
	}
	if g.notify == nil {
		g.notify = func(_ context.Context, entry model.Entry, recipients []string) error {
			g.logger.Info("notification",
				slog.String("entry", entry.ID),
				slog.Int("recipients", len(recipients)))
			return nil
		}
	}
	return g, nil
}

// View renders the document for an external caller: the access chain gates
// the request, and a redirect or access error terminates it.
func (g *Generator) View(ctx context.Context, req Request) (Document, error) {
	form, entry, profile, err := g.load(ctx, req)
	if err != nil {
		return Document{}, err
	}

	g.logger.Debug("access chain",
		slog.String("profile", profile.ID),
		slog.String("checks", g.chain.Describe(profile.PublicAccess)))
	result := g.chain.Evaluate(access.Input{
		Profile: profile,
		Form:    form,
		Entry:   &entry,
		Caller:  req.Caller,
		Now:     g.clock(),
	})
	if redirect := result.Redirect(); redirect != nil {
		return Document{}, &RedirectError{Target: redirect.Target}
	}
	if accessErr := result.Err(); accessErr != nil {
		return Document{}, accessErr
	}

	return g.render(ctx, form, entry, profile)
}

// Generate renders the document on the trusted path: queue callbacks and
// operator tooling, where no external caller is present and the access chain
// does not apply.
func (g *Generator) Generate(ctx context.Context, req Request) (Document, error) {
	form, entry, profile, err := g.load(ctx, req)
	if err != nil {
		return Document{}, err
	}
	return g.render(ctx, form, entry, profile)
}

func (g *Generator) load(ctx context.Context, req Request) (model.Form, model.Entry, model.Profile, error) {
	if strings.TrimSpace(req.FormID) == "" {
		return model.Form{}, model.Entry{}, model.Profile{}, &ValidationError{Detail: "missing form id"}
	}
	if strings.TrimSpace(req.EntryID) == "" {
		return model.Form{}, model.Entry{}, model.Profile{}, &ValidationError{Detail: "missing entry id"}
	}
	if strings.TrimSpace(req.ProfileID) == "" {
		return model.Form{}, model.Entry{}, model.Profile{}, &ValidationError{Detail: "missing pdf id"}
	}

	form, err := g.forms.GetForm(ctx, req.FormID)
	if err != nil {
		return model.Form{}, model.Entry{}, model.Profile{}, wrapLookup("form", req.FormID, err)
	}
	entry, err := g.forms.GetEntry(ctx, req.EntryID)
	if err != nil {
		return model.Form{}, model.Entry{}, model.Profile{}, wrapLookup("entry", req.EntryID, err)
	}
	if entry.FormID != form.ID {
		return model.Form{}, model.Entry{}, model.Profile{}, &ValidationError{
			Detail: fmt.Sprintf("entry %s does not belong to form %s", entry.ID, form.ID),
		}
	}
	profile, err := g.settings.GetPDF(ctx, req.ProfileID)
	if err != nil {
		return model.Form{}, model.Entry{}, model.Profile{}, wrapLookup("pdf", req.ProfileID, err)
	}
	return form, entry, profile, nil
}

func wrapLookup(kind, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &ValidationError{Detail: fmt.Sprintf("unknown %s id %q", kind, id)}
	}
	return fmt.Errorf("generator: load %s %s: %w", kind, id, err)
}

func (g *Generator) render(_ context.Context, form model.Form, entry model.Entry, profile model.Profile) (Document, error) {
	templateID := profile.Template
	if templateID == "" {
		templateID, _ = g.settings.Option("pdf.default_template", DefaultTemplate).(string)
		if templateID == "" {
			templateID = DefaultTemplate
		}
	}
	descriptor, err := g.resolver.Resolve(templateID)
	if err != nil {
		return Document{}, err
	}

	settings := descriptor.Config.Merge(profile.Settings)
	tokens := g.themeTokens(profile.Theme)

	currency, _ := g.settings.Option("currency", "$").(string)
	acc := fields.Accessors{Form: form, Sanitizer: g.sanitizer, Currency: currency}

	formData := fields.BuildFormData(form, &entry, acc, g.registry, g.logger)
	content := g.fieldMarkup(form, &entry, acc)

	markup, err := templates.RenderDocument(g.engine, descriptor, templates.DocumentData{
		Form:     form,
		Entry:    entry,
		FormData: map[string]any(formData),
		Settings: settings,
		Theme:    tokens,
		Content:  content,
	})
	if err != nil {
		return Document{}, err
	}

	return Document{
		Markup:      markup,
		Filename:    g.filename(profile, form, entry, formData),
		ContentType: "text/html; charset=utf-8",
	}, nil
}

// fieldMarkup walks the form through the layout container and appends each
// field's rendered fragment. A field that fails to render degrades to
// nothing; the document always completes.
func (g *Generator) fieldMarkup(form model.Form, entry *model.Entry, acc fields.Accessors) string {
	container := layout.New()
	var sb strings.Builder

	for _, descriptor := range form.Fields {
		cleaned, rowMarkup := container.Place(descriptor)
		sb.WriteString(rowMarkup)

		field, err := g.registry.New(cleaned, entry, acc)
		if err != nil {
			g.logger.Warn("field variant unavailable",
				slog.String("field", descriptor.ID),
				slog.String("type", string(descriptor.Type)),
				slog.Any("error", err))
			continue
		}
		fragment, err := field.HTML()
		if err != nil {
			g.logger.Error("field render failed",
				slog.String("field", descriptor.ID),
				slog.String("type", string(descriptor.Type)),
				slog.Any("error", err))
			continue
		}
		sb.WriteString(fragment)
	}

	sb.WriteString(container.FauxColumn())
	sb.WriteString(container.Close())
	return sb.String()
}

func (g *Generator) themeTokens(name string) map[string]any {
	if g.themes == nil || name == "" {
		return map[string]any{}
	}

	parts := strings.SplitN(name, "/", 2)
	variant := ""
	if len(parts) == 2 {
		variant = parts[1]
	}
	selection, err := g.themes.Select(parts[0], variant)
	if err != nil || selection == nil || selection.Manifest == nil {
		if err != nil {
			g.logger.Warn("theme selection failed", slog.String("theme", name), slog.Any("error", err))
		}
		return map[string]any{}
	}

	tokens := make(map[string]any, len(selection.Manifest.Tokens))
	for key, value := range selection.Manifest.Tokens {
		tokens[key] = value
	}
	if variant != "" {
		if v, ok := selection.Manifest.Variants[variant]; ok {
			for key, value := range v.Tokens {
				tokens[key] = value
			}
		}
	}
	return tokens
}

func (g *Generator) filename(profile model.Profile, form model.Form, entry model.Entry, data fields.FormData) string {
	pattern := profile.Filename
	if strings.TrimSpace(pattern) == "" {
		pattern = form.Title + "-" + entry.ID
	}
	return ResolveFilename(pattern, data) + ".pdf"
}
