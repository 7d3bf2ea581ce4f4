package fields

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

// signature records the URL of a captured signature image.
type signature struct {
	base
}

func newSignature(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &signature{base: newBase(field, entry, acc)}
}

func (f *signature) Value() any {
	return f.memo(func() any {
		return f.entry.String(f.field.ID)
	})
}

func (f *signature) IsEmpty() bool { return isEmptyValue(f.Value()) }

func (f *signature) HTML() (string, error) {
	url := model.Stringify(f.Value())
	if url == "" {
		return f.wrap(""), nil
	}
	markup := fmt.Sprintf(`<img class="doc-signature" src="%s" alt="signature" />`, html.EscapeString(url))
	return f.wrap(markup), nil
}

// postImage records a structured value: url, title, and caption separated by
// the submission plugin's "|:|" delimiter, or a bare URL.
type postImage struct {
	base
}

func newPostImage(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &postImage{base: newBase(field, entry, acc)}
}

// Value returns a map with url/title/caption keys.
func (f *postImage) Value() any {
	return f.memo(func() any {
		raw := f.entry.String(f.field.ID)
		if raw == "" {
			return map[string]any(nil)
		}
		parts := strings.Split(raw, "|:|")
		out := map[string]any{"url": strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			out["title"] = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			out["caption"] = strings.TrimSpace(parts[2])
		}
		return out
	})
}

func (f *postImage) IsEmpty() bool { return isEmptyValue(f.Value()) }

func (f *postImage) HTML() (string, error) {
	value, _ := f.Value().(map[string]any)
	url := model.Stringify(value["url"])
	if url == "" {
		return f.wrap(""), nil
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, `<img class="doc-post-image" src="%s" alt="%s" />`,
		html.EscapeString(url), html.EscapeString(model.Stringify(value["title"])))
	if caption := model.Stringify(value["caption"]); caption != "" {
		builder.WriteString("\n<span class=\"doc-post-image-caption\">")
		builder.WriteString(html.EscapeString(caption))
		builder.WriteString("</span>")
	}
	return f.wrap(builder.String()), nil
}
