package templates

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Header is the metadata block at the top of a template file: a leading
// comment whose body is a YAML mapping. The block is stripped before the
// body reaches the engine, so headers never leak into document output.
//
//	{#
//	name: Zadani
//	version: 1.1.0
//	group: Core
//	required_version: 1.0.0
//	tags: [minimal]
//	#}
type Header struct {
	Name            string   `yaml:"name"`
	Version         string   `yaml:"version"`
	Description     string   `yaml:"description"`
	Author          string   `yaml:"author"`
	Group           string   `yaml:"group"`
	RequiredVersion string   `yaml:"required_version"`
	Tags            []string `yaml:"tags"`
}

// ParseHeader extracts the metadata block from template content. Files
// without a leading comment yield an empty header, not an error: bare
// templates are legal, they just carry no metadata.
func ParseHeader(content []byte) (Header, error) {
	text := strings.TrimLeft(string(content), " \t\r\n")
	if !strings.HasPrefix(text, "{#") {
		return Header{}, nil
	}

	end := strings.Index(text, "#}")
	if end < 0 {
		return Header{}, fmt.Errorf("templates: unterminated header comment")
	}

	body := text[len("{#"):end]
	var header Header
	if err := yaml.Unmarshal([]byte(body), &header); err != nil {
		return Header{}, fmt.Errorf("templates: parse header: %w", err)
	}
	return header, nil
}

// StripHeader returns the template body with the leading metadata block
// removed. The engine's comment syntax is single-line, so the multi-line
// header must never reach it. Bare or unterminated content passes through
// unchanged.
func StripHeader(content []byte) []byte {
	text := strings.TrimLeft(string(content), " \t\r\n")
	if !strings.HasPrefix(text, "{#") {
		return content
	}
	end := strings.Index(text, "#}")
	if end < 0 {
		return content
	}
	return []byte(text[end+len("#}"):])
}

// compareVersions orders two dotted version strings. Missing segments count
// as zero, so "1.2" == "1.2.0".
func compareVersions(a, b string) int {
	as := splitVersion(a)
	bs := splitVersion(b)
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := 0, 0
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func splitVersion(version string) []int {
	parts := strings.Split(strings.TrimSpace(version), ".")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			n = 0
		}
		out = append(out, n)
	}
	return out
}
