package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/nix-community/deadnix-go"
	"github.com/nix-community/deadnix-go/config"
	"github.com/nix-community/deadnix-go/edit"
	"github.com/nix-community/deadnix-go/report"
	"github.com/nix-community/deadnix-go/syntax"
	"github.com/nix-community/deadnix-go/walk"
)

type flags struct {
	noLambdaArg          bool
	noLambdaPatternNames bool
	noUnderscore         bool
	warnUsedUnderscore   bool
	quiet                bool
	editInPlace          bool
	hidden               bool
	fail                 bool
	outputFormat         string
	exclude              []string
	configPath           string
}

func newRootCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deadnix [paths...]",
		Short: "find (and optionally remove) dead variable bindings in Nix files",
		Long: `deadnix scans .nix files for unused let bindings, lambda arguments,
lambda pattern entries, and inherited names, and reports or removes them.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
	}

	flagSet := cmd.Flags()
	flagSet.BoolVarP(&f.noLambdaArg, "no-lambda-arg", "l", false, "don't report unused lambda arguments")
	flagSet.BoolVarP(&f.noLambdaPatternNames, "no-lambda-pattern-names", "L", false, "don't report unused lambda pattern names")
	flagSet.BoolVarP(&f.noUnderscore, "no-underscore", "_", false, "don't report unused bindings starting with _")
	flagSet.BoolVarP(&f.warnUsedUnderscore, "warn-used-underscore", "W", false, "report used bindings starting with _")
	flagSet.BoolVarP(&f.quiet, "quiet", "q", false, "suppress diagnostic output")
	flagSet.BoolVarP(&f.editInPlace, "edit", "e", false, "remove dead bindings in place")
	flagSet.BoolVarP(&f.hidden, "hidden", "h", false, "recurse into hidden paths")
	flagSet.BoolVarP(&f.fail, "fail", "f", false, "exit with status 1 if any dead code was found")
	flagSet.StringVarP(&f.outputFormat, "output-format", "o", "human-readable", `"human-readable" or "json"`)
	flagSet.StringSliceVar(&f.exclude, "exclude", nil, "glob patterns of paths to skip")
	flagSet.StringVar(&f.configPath, "config", "", "path to .deadnix.yml (defaults to ./.deadnix.yml)")

	return cmd
}

// run builds and executes the root command, returning the process exit
// code: 0 on success, 1 when --fail is set and results were produced, 2 on
// an error that prevented the batch from running at all.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f := &flags{}
	cmd := newRootCmd(f)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	anyResults := false
	cmd.RunE = func(cmd *cobra.Command, positional []string) error {
		paths := positional
		if len(paths) == 0 {
			paths = []string{"."}
		}

		cfg, err := config.Load(".", f.configPath)
		if err != nil {
			return err
		}
		settings := mergeSettings(cfg, f, cmd)
		exclude := append(append([]string{}, cfg.Exclude...), f.exclude...)

		fs := walk.New()
		files, err := walk.Collect(ctx, fs, paths, walk.Options{Exclude: exclude, Hidden: f.hidden})
		if err != nil {
			return err
		}

		for _, file := range files {
			fileResults, _, err := processFile(ctx, fs, settings, f, file, stdout, stderr)
			if err != nil {
				fmt.Fprintf(stderr, "deadnix: %v\n", err)
				continue
			}
			if len(fileResults) > 0 {
				anyResults = true
			}
		}
		return nil
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "deadnix: %v\n", err)
		return 2
	}
	if f.fail && anyResults {
		return 1
	}
	return 0
}

func mergeSettings(cfg config.File, f *flags, cmd *cobra.Command) deadnix.Settings {
	s := cfg.Settings()
	changed := cmd.Flags().Changed
	if changed("no-lambda-arg") {
		s.NoLambdaArg = f.noLambdaArg
	}
	if changed("no-lambda-pattern-names") {
		s.NoLambdaPatternNames = f.noLambdaPatternNames
	}
	if changed("no-underscore") {
		s.NoUnderscore = f.noUnderscore
	}
	if changed("warn-used-underscore") {
		s.WarnUsedUnderscore = f.warnUsedUnderscore
	}
	return s
}

func processFile(ctx context.Context, fs afs.Service, settings deadnix.Settings, f *flags, file walk.File, stdout, stderr io.Writer) ([]deadnix.Result, bool, error) {
	tree, errs := syntax.Parse(file.Content)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(stderr, "%s:%d:%d: parse error: %s\n", file.Path, e.Line, e.Column, e.Message)
		}
		return nil, false, nil
	}

	results := settings.FindDeadCode(tree)
	if !f.quiet && len(results) > 0 {
		switch f.outputFormat {
		case "json":
			if err := report.PrintJSON(stdout, file.Path, file.Content, results); err != nil {
				return results, false, err
			}
		default:
			if err := report.PrintHuman(stdout, file.Path, file.Content, results); err != nil {
				return results, false, err
			}
		}
	}

	if !f.editInPlace || len(results) == 0 {
		return results, false, nil
	}
	out, changed, err := edit.RemoveDead(file.Content, results)
	if err != nil {
		return results, false, fmt.Errorf("%s: %w", file.Path, err)
	}
	if !changed {
		return results, false, nil
	}
	if err := walk.Write(ctx, fs, file.Path, out); err != nil {
		return results, false, err
	}
	return results, true, nil
}
