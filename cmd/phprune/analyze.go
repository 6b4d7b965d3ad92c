package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/phprune/internal/output"
	"github.com/panbanda/phprune/internal/progress"
	"github.com/panbanda/phprune/internal/report"
	"github.com/panbanda/phprune/internal/scanner"
	"github.com/panbanda/phprune/pkg/analyzer/deadcode"
	"github.com/panbanda/phprune/pkg/config"
	"github.com/panbanda/phprune/pkg/parser"
	"github.com/panbanda/phprune/pkg/prune"
	"github.com/panbanda/phprune/pkg/source"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Report unreachable classes and unused functions (default)",
		Action:  runAnalyzeCmd,
	}
}

// loadConfig loads the configuration named by --config, or searches for
// one, and applies the flag overrides.
func loadConfig(c *cli.Context) (*config.LoadResult, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}

	cfg := result.Config
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
		if !config.ValidFormat(cfg.Output.Format) {
			return nil, fmt.Errorf("unknown format %q", cfg.Output.Format)
		}
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
	if c.Bool("remove-files") {
		cfg.Output.RemoveFiles = true
	}
	if c.Bool("remove-func") {
		cfg.Output.RemoveFunc = true
	}
	return result, nil
}

func runAnalyzeCmd(c *cli.Context) error {
	loaded, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg := loaded.Config
	slog.Debug("loaded configuration", slog.String("source", loaded.Source))

	fs := afero.NewOsFs()
	stdout, stderr := c.App.Writer, c.App.ErrWriter
	phases := startPhases(stderr)

	scan, err := scanner.NewScanner(cfg)
	if err != nil {
		return err
	}
	files, err := scan.Discover(cfg.Input.RootPath, cfg.Input.Entrypoints)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	entrypoints := 0
	for _, f := range files {
		if f.Entrypoint {
			entrypoints++
		}
	}
	phases.done("found %d files with %d entrypoint files", len(files), entrypoints)

	tracker := progress.NewTracker(stderr, "Loading files...", len(files))
	loader := source.NewLoader(source.NewFilesystem(fs),
		source.WithParserOptions(parser.Options{NamespacePrefix: cfg.Input.NamespacePrefix}),
		source.WithProgress(tracker.Tick))
	units, err := loader.Load(c.Context, files)
	tracker.Finish()
	if err != nil {
		return err
	}
	classes := 0
	for _, u := range units {
		if u.IsClass() {
			classes++
		}
	}
	phases.done("loaded %d classes", classes)

	result := deadcode.New(
		deadcode.WithIgnored(cfg.Input.Ignored),
		deadcode.WithIgnoredFunc(cfg.Input.IgnoredFunc),
		deadcode.WithIgnoredFuncNames(cfg.Input.IgnoredFuncNames),
		deadcode.WithLogger(slog.Default()),
	).Analyze(units)
	phases.done("scanned classes and found %d invalid roots for %d unused files and %d unused functions (%d lines)",
		len(result.InvalidRoots), len(result.Unused), len(result.UnusedMethods), result.UnusedMethodLines)

	if cfg.Output.OutputFile != "" {
		if err := report.WriteUnreachable(fs, cfg.Output.OutputFile, result.Unused); err != nil {
			return err
		}
		phases.done("wrote %d lines in %s", len(result.Unused), cfg.Output.OutputFile)
	}

	if err := writeReport(c, fs, cfg, result); err != nil {
		return err
	}

	prompter := newLinePrompter(c.App.Reader, stdout)
	policy := prune.PolicyAsk
	if c.Bool("yes") {
		policy = prune.PolicyForce
	}
	if cfg.Output.RemoveFiles {
		if err := removeFiles(stdout, fs, result, prompter, policy, cfg, phases); err != nil {
			return err
		}
	}
	if cfg.Output.RemoveFunc {
		if err := removeMethods(stdout, fs, result, prompter, policy, cfg, phases); err != nil {
			return err
		}
	}
	return nil
}

func writeReport(c *cli.Context, fs afero.Fs, cfg *config.Config, result *deadcode.Result) (err error) {
	format := output.ParseFormat(cfg.Output.Format)
	var formatter *output.Formatter
	if path := c.String("output"); path != "" {
		f, ferr := output.NewFormatter(fs, format, path, false)
		if ferr != nil {
			return fmt.Errorf("creating %s: %w", path, ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("closing %s: %w", path, cerr))
			}
		}()
		formatter = f
	} else {
		formatter = output.NewWriterFormatter(c.App.Writer, format, cfg.Output.Color && !color.NoColor)
	}

	rep := report.Build(result, report.Options{
		Ignored:           cfg.Input.Ignored,
		PrintInvalid:      cfg.Output.PrintInvalid,
		PrintFunctions:    cfg.Output.PrintFunctions,
		PrintCycles:       cfg.Output.PrintCycles,
		PrintSpecific:     cfg.Output.PrintSpecific,
		ToScan:            cfg.Output.ToScan,
		IncludeDeprecated: cfg.Output.IncludeDeprecated,
	})
	return formatter.Output(rep)
}

func removeFiles(w io.Writer, fs afero.Fs, result *deadcode.Result, prompter prune.Prompter, policy prune.Policy, cfg *config.Config, phases *phaseTimer) error {
	output.Heading(w, cfg.Output.Color && !color.NoColor, "REMOVING UNUSED FILES")
	plan, err := prune.NewFilePlanner(result, prompter, w, cfg.Output.IncludeDeprecated).Plan(policy)
	if errors.Is(err, prune.ErrCanceled) {
		messages(w).Warning("File removal canceled")
		return nil
	}
	if err != nil {
		return err
	}
	phases.reset()
	n, err := plan.Apply(fs)
	if err != nil {
		return err
	}
	phases.done("removed %d files", n)
	return nil
}

func removeMethods(w io.Writer, fs afero.Fs, result *deadcode.Result, prompter prune.Prompter, policy prune.Policy, cfg *config.Config, phases *phaseTimer) error {
	output.Heading(w, cfg.Output.Color && !color.NoColor, "REMOVING UNUSED FUNCTIONS")
	plan, err := prune.NewMethodPlanner(result, prompter, w, cfg.Output.IncludeDeprecated).Plan(policy)
	if err != nil {
		return err
	}
	phases.reset()
	n, err := plan.Apply(fs)
	if err != nil {
		return err
	}
	phases.done("removed %d functions", plan.Count())
	phases.done("rewrote %d files", n)
	return nil
}
