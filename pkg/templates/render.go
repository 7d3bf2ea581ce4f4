package templates

import (
	"fmt"

	"github.com/goliatone/go-docgen/pkg/model"
)

// DocumentData carries everything a document template can reference. The
// rendered field markup arrives pre-built as Content; templates place it with
// {{ content|safe }}.
type DocumentData struct {
	Form     model.Form
	Entry    model.Entry
	FormData map[string]any
	Settings map[string]any
	Theme    map[string]any
	Content  string
}

// RenderDocument reads the descriptor's template body, strips the metadata
// header, and renders the remainder with the document context.
func RenderDocument(engine TemplateRenderer, descriptor Descriptor, data DocumentData) (string, error) {
	if engine == nil {
		return "", fmt.Errorf("templates: render %q: engine is nil", descriptor.ID)
	}
	body, err := descriptor.Content()
	if err != nil {
		return "", err
	}
	body = StripHeader(body)

	context := map[string]any{
		"form":      data.Form,
		"entry":     data.Entry,
		"form_data": data.FormData,
		"settings":  data.Settings,
		"theme":     data.Theme,
		"content":   data.Content,
	}
	rendered, err := engine.RenderString(string(body), context)
	if err != nil {
		return "", fmt.Errorf("templates: render %q: %w", descriptor.ID, err)
	}
	return rendered, nil
}
