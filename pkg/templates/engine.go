package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-docgen/pkg/model"
)

// TemplateRenderer is the engine seam the document pipeline renders through.
// It mirrors the github.com/goliatone/go-template contract so callers can
// swap in that engine directly.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

// EngineOption configures the pongo2-backed engine before construction.
type EngineOption func(*engineConfig)

type engineConfig struct {
	baseDir    string
	templates  fs.FS
	extension  string
	globalData map[string]any
	currency   string
}

// WithTemplateDir loads templates from a directory on disk.
func WithTemplateDir(dir string) EngineOption {
	return func(cfg *engineConfig) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithTemplateFS loads templates from an fs.FS.
func WithTemplateFS(files fs.FS) EngineOption {
	return func(cfg *engineConfig) {
		cfg.templates = files
	}
}

// WithExtension overrides the default ".html" template extension.
func WithExtension(ext string) EngineOption {
	return func(cfg *engineConfig) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobalData seeds context values available to every template.
func WithGlobalData(data map[string]any) EngineOption {
	return func(cfg *engineConfig) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithCurrencySymbol sets the symbol used by the money filter.
func WithCurrencySymbol(symbol string) EngineOption {
	return func(cfg *engineConfig) {
		if symbol != "" {
			cfg.currency = symbol
		}
	}
}

// WithEngineOptions exists for compatibility with the go-template engine
// configuration surface and is currently a no-op.
func WithEngineOptions(_ ...gotemplatepkg.Option) EngineOption {
	return func(*engineConfig) {}
}

// Engine renders document templates through a pongo2 template set. It
// satisfies TemplateRenderer.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	globals     map[string]any
	extension   string
}

var _ TemplateRenderer = (*Engine)(nil)

var filterRegistration sync.Once

// NewEngine constructs an Engine. At least one template source (directory or
// fs.FS) is required.
func NewEngine(options ...EngineOption) (*Engine, error) {
	cfg := &engineConfig{extension: ".html", currency: "$"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("templates: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	if len(loaders) == 0 {
		return nil, errors.New("templates: need a template dir or fs.FS")
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("docgen", loaders...),
		extension:   cfg.extension,
	}
	registerDocumentFilters(cfg.currency)

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("templates: apply global data: %w", err)
	}
	return engine, nil
}

// Render resolves the named template through the configured loaders.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("templates: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.extension) {
		path += e.extension
	}

	tmpl, err := e.templateSet.FromCache(path)
	if err != nil {
		return "", fmt.Errorf("templates: load template %q: %w", path, err)
	}
	return e.execute(tmpl, path, data, out...)
}

// RenderString parses and renders inline template content.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("templates: engine is nil")
	}
	tmpl, err := e.templateSet.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("templates: parse template string: %w", err)
	}
	return e.execute(tmpl, "(inline)", data, out...)
}

func (e *Engine) execute(tmpl *pongo2.Template, name string, data any, out ...io.Writer) (string, error) {
	context, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("templates: convert data: %w", err)
	}

	e.mu.RLock()
	for key, value := range e.globals {
		if _, exists := context[key]; !exists {
			context[key] = value
		}
	}
	e.mu.RUnlock()

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(context, &buf); err != nil {
		return "", fmt.Errorf("templates: execute %s: %w", name, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := w.Write([]byte(rendered)); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// RegisterFilter registers a template filter. Duplicate names error at the
// pongo2 layer.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("templates: filter name and function required")
	}
	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramValue any
		if param != nil {
			paramValue = param.Interface()
		}
		result, err := fn(in.Interface(), paramValue)
		if err != nil {
			return nil, &pongo2.Error{Sender: "docgen_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
	if err := pongo2.RegisterFilter(name, filter); err != nil {
		return fmt.Errorf("templates: register filter %q: %w", name, err)
	}
	return nil
}

// GlobalContext merges values into the context of every subsequent render.
func (e *Engine) GlobalContext(data any) error {
	if data == nil {
		return nil
	}
	values, err := convertToContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.globals == nil {
		e.globals = make(map[string]any, len(values))
	}
	for key, value := range values {
		e.globals[key] = value
	}
	return nil
}

func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	default:
		return nil, fmt.Errorf("templates: unsupported context type %T", data)
	}
}

// registerDocumentFilters installs the document filter set. pongo2 filters
// are process-global, so registration runs once.
func registerDocumentFilters(currency string) {
	filterRegistration.Do(func() {
		_ = pongo2.RegisterFilter("money", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			amount, ok := model.ToNumber(in.Interface())
			if !ok {
				return in, nil
			}
			return pongo2.AsValue(fmt.Sprintf("%s%.2f", currency, amount)), nil
		})
		_ = pongo2.RegisterFilter("nl2br", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsSafeValue(strings.ReplaceAll(in.String(), "\n", "<br />")), nil
		})
	})
}
