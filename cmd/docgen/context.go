package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/goliatone/go-docgen/pkg/generator"
	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/store"
	"github.com/goliatone/go-docgen/pkg/templates"
)

// dataFile is the JSON fixture the CLI loads its working set from: one form,
// its entries, and the pdf profiles attached to it.
type dataFile struct {
	Form     model.Form      `json:"form"`
	Entries  []model.Entry   `json:"entries"`
	Profiles []model.Profile `json:"pdfs"`
}

type commandContext struct {
	data    *string
	site    *string
	network *string
	options *string
	queueDB *string
	verbose *bool
}

func newCommandContext(data, site, network, options, queueDB *string, verbose *bool) *commandContext {
	return &commandContext{
		data:    data,
		site:    site,
		network: network,
		options: options,
		queueDB: queueDB,
		verbose: verbose,
	}
}

func (c *commandContext) logger() *slog.Logger {
	level := slog.LevelInfo
	if *c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (c *commandContext) resolver() *templates.Resolver {
	return templates.NewResolver(
		templates.WithSiteDir(*c.site),
		templates.WithNetworkDir(*c.network),
		templates.WithResolverLogger(c.logger()),
	)
}

// loadStores reads the data file into memory-backed stores.
func (c *commandContext) loadStores() (*store.MemoryFormStore, *store.MemorySettingsStore, error) {
	if *c.data == "" {
		return nil, nil, errors.New("a --data file is required")
	}
	raw, err := os.ReadFile(*c.data)
	if err != nil {
		return nil, nil, fmt.Errorf("read data file: %w", err)
	}
	var file dataFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("parse data file: %w", err)
	}
	if file.Form.ID == "" {
		return nil, nil, errors.New("data file has no form")
	}

	forms := store.NewMemoryFormStore()
	forms.AddForm(file.Form)
	for _, entry := range file.Entries {
		forms.AddEntry(entry)
	}

	var options *store.Options
	if *c.options != "" {
		options, err = store.LoadOptions(*c.options)
		if err != nil {
			return nil, nil, err
		}
	}
	settings := store.NewMemorySettingsStore(options)
	for _, profile := range file.Profiles {
		settings.AddPDF(file.Form.ID, profile)
	}
	return forms, settings, nil
}

func (c *commandContext) generator(extra ...generator.Option) (*generator.Generator, error) {
	forms, settings, err := c.loadStores()
	if err != nil {
		return nil, err
	}
	options := append([]generator.Option{
		generator.WithStores(forms, settings),
		generator.WithResolver(c.resolver()),
		generator.WithLogger(c.logger()),
	}, extra...)
	return generator.New(options...)
}
