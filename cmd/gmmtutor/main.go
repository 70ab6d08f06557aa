// Command gmmtutor renders the Gaussian mixture tutorial as static files.
//
// It runs the interactive session until its iteration budget is spent,
// evaluates the comparison and walkthrough panels, and writes one image per
// figure, one image per walkthrough frame, the formula catalog and the
// parameter panel into the output directory.
//
// Usage:
//
//	gmmtutor -config tutorial.yaml -out site -format svg -ascii
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/pkg/log"
	"github.com/YuminosukeSato/gmmtutor/render/ascii"
	"github.com/YuminosukeSato/gmmtutor/render/plotimg"
	"github.com/YuminosukeSato/gmmtutor/tutorial"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "gmmtutor: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	out        string
	format     string
	seed       int64
	iterations int
	theme      string
	ascii      bool
	logLevel   string
	snapshot   string
}

func parseFlags(args []string, stderr io.Writer) (options, map[string]bool, error) {
	var o options
	fs := flag.NewFlagSet("gmmtutor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&o.out, "out", "gmmtutor-out", "output directory")
	fs.StringVar(&o.format, "format", "png", "image format (png, svg, pdf, jpg, eps, tiff)")
	fs.Int64Var(&o.seed, "seed", -1, "random seed; negative uses the clock")
	fs.IntVar(&o.iterations, "iterations", 10, "EM iteration budget")
	fs.StringVar(&o.theme, "theme", "dark", "chart theme (dark, light)")
	fs.BoolVar(&o.ascii, "ascii", false, "also print line and bar figures to stdout")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&o.snapshot, "snapshot", "", "write the final EM snapshot to this file (.gob for gob, JSON otherwise)")
	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	if fs.NArg() > 0 {
		return o, nil, errors.NewValidationError("args", "unexpected positional arguments", fs.Args())
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return o, set, nil
}

// loadConfig reads the configuration file and applies the flags that were
// given explicitly on top of it.
func loadConfig(o options, set map[string]bool) (tutorial.Config, error) {
	cfg := tutorial.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = tutorial.LoadConfig(o.configPath); err != nil {
			return cfg, err
		}
	}
	if set["seed"] {
		cfg.Seed = o.seed
	}
	if set["iterations"] {
		cfg.MaxIterations = o.iterations
	}
	if set["theme"] {
		cfg.Theme = o.theme
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, set, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	log.SetProvider(log.NewZerologProvider(log.NewConsoleLogger(stderr, level)))
	logger := log.GetLoggerWithName("gmmtutor")

	cfg, err := loadConfig(o, set)
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	logger.Info("configuration loaded",
		log.PathKey, o.configPath,
		log.RandomSeedKey, cfg.Seed,
		log.MaxIterationsKey, cfg.MaxIterations,
	)

	src := tutorial.NewSource(cfg)
	var (
		session    *tutorial.Session
		comparison *tutorial.Comparison
	)
	if cfg.HasPanel(tutorial.PanelInteractive) {
		if session, err = tutorial.NewSession(cfg, tutorial.WithSource(src)); err != nil {
			return err
		}
		for session.CanIterate() {
			if err := ctx.Err(); err != nil {
				return errors.Wrap(err, "interrupted")
			}
			if _, err := session.Iterate(); err != nil {
				return err
			}
		}
	}
	if cfg.HasPanel(tutorial.PanelComparison) {
		comparison = tutorial.NewComparison(cfg, src)
	}

	page := tutorial.BuildPage(ctx, cfg, session, comparison, src)
	if err := writePage(cfg, page, o); err != nil {
		return err
	}
	if o.ascii {
		printASCII(stdout, cfg, page, logger)
	}
	if o.snapshot != "" && session != nil {
		if err := writeSnapshot(session, o.snapshot); err != nil {
			return err
		}
		logger.Info("snapshot written", log.PathKey, o.snapshot)
	}
	if len(page.Failed) > 0 {
		return errors.Newf("panels failed: %s", strings.Join(page.Failed, ", "))
	}
	return nil
}

func writePage(cfg tutorial.Config, page *tutorial.Page, o options) error {
	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", o.out)
	}
	r := plotimg.New(cfg.ChartTheme())
	for _, nf := range page.Figures {
		if err := r.Save(nf.Figure, filepath.Join(o.out, nf.Name+"."+o.format)); err != nil {
			return errors.Wrapf(err, "figure %s", nf.Name)
		}
	}
	for _, anim := range page.Animations {
		dir := filepath.Join(o.out, tutorial.PanelWalkthrough)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
		if _, err := r.SaveAnimation(anim, dir, o.format); err != nil {
			return err
		}
	}

	var b strings.Builder
	tutorial.RenderFormulas(tutorial.MarkdownRenderer{W: &b}, log.GetLoggerWithName("formulas"))
	if err := os.WriteFile(filepath.Join(o.out, "formulas.md"), []byte(b.String()), 0o644); err != nil {
		return errors.Wrap(err, "failed to write formulas")
	}
	if page.Parameters != "" {
		if err := os.WriteFile(filepath.Join(o.out, "parameters.txt"), []byte(page.Parameters), 0o644); err != nil {
			return errors.Wrap(err, "failed to write parameters")
		}
	}
	return nil
}

func printASCII(w io.Writer, cfg tutorial.Config, page *tutorial.Page, logger log.Logger) {
	r := ascii.New(cfg.ChartTheme(), ascii.WithWidth(60))
	for _, nf := range page.Figures {
		if !ascii.Supports(nf.Figure) {
			continue
		}
		if err := r.Write(w, nf.Figure); err != nil {
			logger.Warn("ascii rendering failed", err, "figure", nf.Name)
		}
	}
	if page.Parameters != "" {
		fmt.Fprintln(w, page.Parameters)
	}
}

func writeSnapshot(s *tutorial.Session, path string) error {
	return s.State().Snapshot.SaveFile(path)
}
