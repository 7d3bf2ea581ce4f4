package generator

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-docgen/pkg/fields"
	"github.com/goliatone/go-docgen/pkg/model"
)

// mergeTagPattern matches {Label:fieldId} and {:fieldId} filename tags. The
// label is decorative; the field id after the colon selects the value.
var mergeTagPattern = regexp.MustCompile(`\{([^{}:]*):([^{}]+)\}`)

// invalidFilenameChars are replaced with underscores so the result is safe on
// every filesystem the documents land on.
var invalidFilenameChars = strings.NewReplacer(
	`\`, "_", "/", "_", `"`, "_", "*", "_",
	"?", "_", "|", "_", ":", "_", "<", "_", ">", "_",
)

// ResolveFilename substitutes merge tags from form data, scrubs invalid
// characters, and strips a trailing .pdf so callers control the extension.
// Tags referencing missing fields resolve to nothing.
func ResolveFilename(pattern string, data fields.FormData) string {
	resolved := mergeTagPattern.ReplaceAllStringFunc(pattern, func(tag string) string {
		groups := mergeTagPattern.FindStringSubmatch(tag)
		fieldID := strings.TrimSpace(groups[2])
		value, ok := data.Lookup(fieldID)
		if !ok {
			return ""
		}
		return model.Stringify(value)
	})

	resolved = invalidFilenameChars.Replace(resolved)

	for {
		lower := strings.ToLower(resolved)
		if !strings.HasSuffix(lower, ".pdf") {
			break
		}
		resolved = resolved[:len(resolved)-len(".pdf")]
	}
	return strings.TrimSpace(resolved)
}
