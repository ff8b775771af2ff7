// Package main provides the vizsolve binary: it loads CSV tables and a
// chart document, runs the constraint resolution cycle, and prints the
// resolved chart state.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vizsolve/vizsolve/chart"
	"github.com/vizsolve/vizsolve/dataset"
)

const (
	Version = "0.1.0"
	appName = "vizsolve"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		dataPaths []string
		chartPath string
		format    string
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "vizsolve",
		Short: "Declarative chart resolution engine",
		Long: `Vizsolve resolves a declarative chart specification against tabular
data: scales are inferred from the mapped columns, plot-segment glyphs
are instantiated per data group, and element geometry is settled by a
tiered constraint solver.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(dataPaths, chartPath, format, logLevel)
		},
	}

	cmd.Flags().StringSliceVarP(&dataPaths, "data", "d", nil, "CSV table file (repeatable; table named after the file)")
	cmd.Flags().StringVarP(&chartPath, "chart", "c", "", "Chart document (.json or .yaml)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml)")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("chart")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func run(dataPaths []string, chartPath, format, logLevel string) error {
	logger := newLogger(logLevel)

	ds, err := loadTables(dataPaths)
	if err != nil {
		return err
	}

	doc, err := os.ReadFile(chartPath)
	if err != nil {
		return fmt.Errorf("read chart document: %w", err)
	}

	var m *chart.Manager
	switch strings.ToLower(filepath.Ext(chartPath)) {
	case ".yaml", ".yml":
		m, err = chart.LoadYAML(ds, doc, chart.WithLogger(logger))
	default:
		m, err = chart.LoadJSON(ds, doc, chart.WithLogger(logger))
	}
	if err != nil {
		return err
	}

	for _, f := range m.LastFailures() {
		logger.Warn("unsatisfiable constraint", "constraint", f.Constraint, "residual", f.Residual)
	}

	return printState(m, format)
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadTables reads every CSV into a table named after its file stem.
func loadTables(paths []string) (*dataset.Dataset, error) {
	tables := make([]*dataset.Table, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open data file: %w", err)
		}
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		t, err := dataset.FromCSV(name, f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return dataset.NewDataset("cli", tables...), nil
}

// stateView is the printed resolution report.
type stateView struct {
	Chart    map[string]any           `json:"chart" yaml:"chart"`
	Elements map[string]elementView   `json:"elements" yaml:"elements"`
	Scales   []map[string]any         `json:"scales,omitempty" yaml:"scales,omitempty"`
	Failures []map[string]any         `json:"failures,omitempty" yaml:"failures,omitempty"`
}

type elementView struct {
	Class      string             `json:"class" yaml:"class"`
	Attributes map[string]any     `json:"attributes" yaml:"attributes"`
	Glyphs     []glyphView        `json:"glyphs,omitempty" yaml:"glyphs,omitempty"`
}

type glyphView struct {
	Group      string                    `json:"group" yaml:"group"`
	Rows       []int                     `json:"rows" yaml:"rows"`
	Attributes map[string]any            `json:"attributes" yaml:"attributes"`
	Marks      map[string]map[string]any `json:"marks,omitempty" yaml:"marks,omitempty"`
}

func printState(m *chart.Manager, format string) error {
	view := stateView{
		Chart:    attrView(m.State().Attributes),
		Elements: make(map[string]elementView),
	}
	for _, el := range m.Specification().Elements {
		st := m.State().Elements[el.ID]
		ev := elementView{Class: el.ClassID, Attributes: attrView(st.Attributes)}
		for _, gs := range st.Glyphs {
			gv := glyphView{
				Group:      gs.GroupKey,
				Rows:       gs.Rows,
				Attributes: attrView(gs.Attributes),
				Marks:      make(map[string]map[string]any, len(gs.Marks)),
			}
			for id, attrs := range gs.Marks {
				gv.Marks[id] = attrView(attrs)
			}
			ev.Glyphs = append(ev.Glyphs, gv)
		}
		view.Elements[el.ID] = ev
	}
	for _, sc := range m.Scales().All() {
		view.Scales = append(view.Scales, map[string]any{
			"id": sc.ID, "kind": sc.Kind.String(), "role": sc.Role.String(),
		})
	}
	for _, f := range m.LastFailures() {
		view.Failures = append(view.Failures, map[string]any{
			"constraint": f.Constraint, "residual": f.Residual,
		})
	}

	switch strings.ToLower(format) {
	case "yaml":
		out, err := yaml.Marshal(view)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)

		return err
	default:
		out, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Println(string(out))

		return err
	}
}

// attrView flattens an attribute map to printable scalars.
func attrView(attrs chart.Attributes) map[string]any {
	out := make(map[string]any, len(attrs))
	for name, v := range attrs {
		switch v.Kind {
		case chart.AttrNumber:
			out[name] = v.Num
		case chart.AttrString:
			out[name] = v.Str
		case chart.AttrVector:
			out[name] = v.Vec
		}
	}

	return out
}
