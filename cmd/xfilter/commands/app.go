package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hupe1980/crossfilter"
	"github.com/hupe1980/crossfilter/codec"
	"github.com/hupe1980/crossfilter/config"
	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/identity"
)

var errNoDataset = errors.New("no dataset: pass --dataset")

// app holds the persistent flag values of one command tree.
type app struct {
	configPath  string
	datasetPath string
	selection   []string
	dump        bool
	flags       *pflag.FlagSet
}

// settings loads the config file and environment, with flags taking
// precedence.
func (a *app) settings() (config.Settings, error) {
	v := config.New()
	if a.configPath != "" {
		v.SetConfigFile(a.configPath)
		if err := v.ReadInConfig(); err != nil {
			return config.Settings{}, fmt.Errorf("config: read %s: %w", a.configPath, err)
		}
	}
	for key, flag := range map[string]string{
		"logLevel":  "log-level",
		"logFormat": "log-format",
		"locale":    "locale",
	} {
		if f := a.flags.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return config.Settings{}, err
			}
		}
	}
	return config.FromViper(v)
}

// session is the interactor of one command run.
type session struct {
	settings config.Settings
	registry *dataset.Registry
	host     *memoryHost
	xf       *crossfilter.Interactor
	logger   *crossfilter.Logger
}

type sessionOption func(*config.Settings)

func (a *app) session(cmd *cobra.Command, mutate ...sessionOption) (*session, error) {
	settings, err := a.settings()
	if err != nil {
		return nil, err
	}
	for _, fn := range mutate {
		fn(&settings)
	}
	if a.datasetPath == "" {
		return nil, errNoDataset
	}

	logger := crossfilter.NewLoggerFor(cmd.ErrOrStderr(), settings.LogFormat, settings.LogLevel)
	registry := dataset.NewRegistry(dataset.NewFileSource(a.datasetPath))
	if _, err := registry.Refresh(cmd.Context()); err != nil {
		return nil, err
	}

	host := newMemoryHost(cmd.OutOrStdout(), a.selection...)
	xf, err := crossfilter.New(registry, host,
		crossfilter.WithSettings(settings),
		crossfilter.WithLogger(logger),
		crossfilter.WithTooltipService(&printingTooltips{out: cmd.OutOrStdout()}),
	)
	if err != nil {
		return nil, err
	}
	return &session{settings: settings, registry: registry, host: host, xf: xf, logger: logger}, nil
}

func (s *session) Close() error {
	return s.xf.Close()
}

func (a *app) dumpTo(w io.Writer, label string, v any) {
	if !a.dump {
		return
	}
	fmt.Fprintf(w, "--- %s\n", label)
	spew.Fdump(w, v)
}

// parseDocument decodes a JSON object into a datum.
func parseDocument(s string) (datum.Document, error) {
	var m map[string]any
	if err := codec.Default.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("parse datum %q: %w", s, err)
	}
	return datum.DocumentFromAny(m)
}

// parseValue decodes any JSON value.
func parseValue(s string) (datum.Value, error) {
	var v any
	if err := codec.Default.Unmarshal([]byte(s), &v); err != nil {
		return datum.Value{}, fmt.Errorf("parse value %q: %w", s, err)
	}
	return datum.FromAny(v)
}

// parseItem builds an event item from a single --datum or repeated --facet
// datums.
func parseItem(single string, facet []string) (*datum.Item, error) {
	it := &datum.Item{}
	if single != "" {
		d, err := parseDocument(single)
		if err != nil {
			return nil, err
		}
		it.Datum = d
	}
	for _, f := range facet {
		d, err := parseDocument(f)
		if err != nil {
			return nil, err
		}
		it.Facet = append(it.Facet, d)
	}
	if it.Datum == nil && it.Facet == nil {
		return nil, nil
	}
	return it, nil
}

func keys(ids *identity.Set) string {
	if ids.IsEmpty() {
		return "(none)"
	}
	return strings.Join(ids.Keys(), ",")
}

func waitAck(ctx context.Context, ack <-chan error) error {
	if ack == nil {
		return nil
	}
	select {
	case err := <-ack:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
