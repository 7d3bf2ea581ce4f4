package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

// Source names the directory tier a template was resolved from.
type Source string

const (
	SourceSite    Source = "site"
	SourceNetwork Source = "network"
	SourceCore    Source = "core"
)

// RunningVersion is the document system version templates declare
// compatibility against.
const RunningVersion = "1.2.0"

// templateExtension is the file extension template candidates must carry.
const templateExtension = ".html"

// reservedStems are configuration carriers living beside templates; they are
// never listed or resolved as templates themselves.
var reservedStems = map[string]struct{}{
	"configuration":         {},
	"configuration.archive": {},
}

// Descriptor is one resolved template: its location, parsed header, and the
// settings schema derived from its file name.
type Descriptor struct {
	ID     string
	Path   string
	Source Source
	Header Header
	Config Config
	// Incompatible marks templates whose required version exceeds the
	// running system version. They still enumerate, but resolving them for
	// rendering fails.
	Incompatible bool

	fsys fs.FS
}

// Content reads the template file body.
func (d Descriptor) Content() ([]byte, error) {
	if d.fsys == nil {
		return nil, fmt.Errorf("templates: descriptor %q has no backing filesystem", d.ID)
	}
	data, err := fs.ReadFile(d.fsys, d.Path)
	if err != nil {
		return nil, fmt.Errorf("templates: read %s: %w", d.Path, err)
	}
	return data, nil
}

// ErrorKind classifies resolver failures.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindIncompatible ErrorKind = "incompatible"
)

// Error is a user-facing template resolution failure. Incompatibility errors
// carry both version numbers for display.
type Error struct {
	ID              string
	Kind            ErrorKind
	RequiredVersion string
	RunningVersion  string
	Err             error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindIncompatible:
		return fmt.Sprintf("templates: %q requires version %s but %s is running", e.ID, e.RequiredVersion, e.RunningVersion)
	default:
		if e.Err != nil {
			return fmt.Sprintf("templates: %q: %v", e.ID, e.Err)
		}
		return fmt.Sprintf("templates: template %q not found", e.ID)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Option customises a Resolver.
type Option func(*Resolver)

// WithSiteDir sets the current-site user template directory.
func WithSiteDir(dir string) Option {
	return func(r *Resolver) {
		r.siteDir = strings.TrimSpace(dir)
	}
}

// WithNetworkDir sets the network-wide user template directory.
func WithNetworkDir(dir string) Option {
	return func(r *Resolver) {
		r.networkDir = strings.TrimSpace(dir)
	}
}

// WithCoreFS replaces the bundled core template filesystem.
func WithCoreFS(fsys fs.FS) Option {
	return func(r *Resolver) {
		r.core = fsys
	}
}

// WithRunningVersion overrides the version compatibility baseline.
func WithRunningVersion(version string) Option {
	return func(r *Resolver) {
		if strings.TrimSpace(version) != "" {
			r.running = version
		}
	}
}

// WithConfigRegistry injects the settings schema registry.
func WithConfigRegistry(registry *ConfigRegistry) Option {
	return func(r *Resolver) {
		if registry != nil {
			r.configs = registry
		}
	}
}

// WithResolverLogger sets the logger used for watcher and cache traces.
func WithResolverLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver locates templates across the user/network/core directory tiers,
// first match winning, and pairs each with its configuration schema.
type Resolver struct {
	siteDir    string
	networkDir string
	core       fs.FS
	running    string
	configs    *ConfigRegistry
	logger     *slog.Logger

	mu        sync.Mutex
	listCache []Descriptor
}

// NewResolver constructs a resolver backed by the bundled core templates
// unless overridden.
func NewResolver(options ...Option) *Resolver {
	r := &Resolver{
		core:    CoreFS(),
		running: RunningVersion,
		configs: NewConfigRegistry(),
		logger:  slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

type tier struct {
	source Source
	fsys   fs.FS
}

// tiers returns the search order: site, network, core. Missing user
// directories are skipped silently.
func (r *Resolver) tiers() []tier {
	out := make([]tier, 0, 3)
	if r.siteDir != "" {
		if info, err := os.Stat(r.siteDir); err == nil && info.IsDir() {
			out = append(out, tier{source: SourceSite, fsys: os.DirFS(r.siteDir)})
		}
	}
	if r.networkDir != "" {
		if info, err := os.Stat(r.networkDir); err == nil && info.IsDir() {
			out = append(out, tier{source: SourceNetwork, fsys: os.DirFS(r.networkDir)})
		}
	}
	if r.core != nil {
		out = append(out, tier{source: SourceCore, fsys: r.core})
	}
	return out
}

// Resolve locates the template by id, first tier wins. Templates declaring a
// required version above the running version fail with an Error carrying
// both numbers.
func (r *Resolver) Resolve(id string) (Descriptor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Descriptor{}, &Error{ID: id, Kind: KindNotFound, Err: errors.New("empty template id")}
	}
	if _, reserved := reservedStems[id]; reserved {
		return Descriptor{}, &Error{ID: id, Kind: KindNotFound, Err: errors.New("reserved name")}
	}

	filename := id + templateExtension
	for _, t := range r.tiers() {
		if _, err := fs.Stat(t.fsys, filename); err != nil {
			continue
		}
		descriptor, err := r.describe(t, filename)
		if err != nil {
			return Descriptor{}, err
		}
		if descriptor.Incompatible {
			return Descriptor{}, &Error{
				ID:              id,
				Kind:            KindIncompatible,
				RequiredVersion: descriptor.Header.RequiredVersion,
				RunningVersion:  r.running,
			}
		}
		return descriptor, nil
	}
	return Descriptor{}, &Error{ID: id, Kind: KindNotFound}
}

// List enumerates every template across the tiers, deduplicated by id: a
// user-directory file overriding a core file counts once, attributed to the
// overriding tier. Incompatible templates are listed and flagged. The result
// is cached until Invalidate.
func (r *Resolver) List() ([]Descriptor, error) {
	r.mu.Lock()
	if r.listCache != nil {
		cached := r.listCache
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	seen := make(map[string]struct{})
	var out []Descriptor

	for _, t := range r.tiers() {
		entries, err := fs.ReadDir(t.fsys, ".")
		if err != nil {
			return nil, fmt.Errorf("templates: list %s tier: %w", t.source, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateExtension) {
				continue
			}
			id := strings.TrimSuffix(entry.Name(), templateExtension)
			if _, reserved := reservedStems[id]; reserved {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			descriptor, err := r.describe(t, entry.Name())
			if err != nil {
				r.logger.Error("template skipped", slog.String("file", entry.Name()), slog.Any("error", err))
				continue
			}
			seen[id] = struct{}{}
			out = append(out, descriptor)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	r.mu.Lock()
	r.listCache = out
	r.mu.Unlock()
	return out, nil
}

// Invalidate drops the enumeration cache. The directory watcher calls this
// when a template tier changes on disk.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.listCache = nil
	r.mu.Unlock()
}

func (r *Resolver) describe(t tier, filename string) (Descriptor, error) {
	content, err := fs.ReadFile(t.fsys, filename)
	if err != nil {
		return Descriptor{}, &Error{ID: filename, Kind: KindNotFound, Err: err}
	}
	header, err := ParseHeader(content)
	if err != nil {
		return Descriptor{}, &Error{ID: filename, Kind: KindNotFound, Err: err}
	}

	id := strings.TrimSuffix(filename, templateExtension)
	descriptor := Descriptor{
		ID:     id,
		Path:   filename,
		Source: t.source,
		Header: header,
		Config: r.configs.Lookup(filename),
		fsys:   t.fsys,
	}
	if header.RequiredVersion != "" && compareVersions(header.RequiredVersion, r.running) > 0 {
		descriptor.Incompatible = true
	}
	return descriptor, nil
}
