// Command serotonin compiles Serotonin programs to Brainfuck.
//
// The compiler reads the file named on the command line, resolves IMPORT
// directives against the entry file's directory, its libraries/ subdirectory,
// and any --lib flags, and writes the resulting BF to stdout or --output.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Alextopher/serotonin/runtime/bf"
	"github.com/Alextopher/serotonin/runtime/compiler"
	"github.com/Alextopher/serotonin/runtime/rewriter"
)

func main() {
	var (
		libDirs []string
		output  string
		watch   bool
		debug   bool
		steps   int
		fuel    int
	)

	rootCmd := &cobra.Command{
		Use:           "serotonin <path>",
		Short:         "Compile Serotonin programs to Brainfuck",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true, // we handle error printing ourselves
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := args[0]

			opts := []compiler.Option{
				compiler.WithLibDirs(libDirs...),
				compiler.WithStepBudget(steps),
				compiler.WithFuel(fuel),
			}
			if debug {
				logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				}))
				opts = append(opts, compiler.WithLogger(logger))
			}

			if watch {
				if output == "" {
					return fmt.Errorf("--watch needs --output; stdout is not a useful sink for repeated builds")
				}
				return watchLoop(entry, output, opts)
			}

			res, err := compiler.Compile(entry, opts...)
			if err != nil {
				return err
			}
			return writeOutput(output, res.BF)
		},
	}

	rootCmd.Flags().StringArrayVar(&libDirs, "lib", nil, "additional library search directories")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "write BF here instead of stdout")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "recompile whenever a source file changes")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "verbose compiler tracing on stderr")
	rootCmd.Flags().IntVar(&steps, "steps", rewriter.DefaultStepBudget, "reduction step budget")
	rootCmd.Flags().IntVar(&fuel, "fuel", bf.DefaultFuel, "staged interpreter instruction budget")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "serotonin: %v\n", err)
		os.Exit(1)
	}
}

// writeOutput writes the program to the output file, or stdout with no
// trailing newline
func writeOutput(output, program string) error {
	if output == "" {
		fmt.Print(program)
		return nil
	}
	return os.WriteFile(output, []byte(program), 0o644)
}

// watchLoop recompiles on every change to a source file that took part in
// the last successful load. Compile errors are reported and watching
// continues; only watcher failures end the loop.
func watchLoop(entry, output string, opts []compiler.Option) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	rebuild := func() {
		res, err := compiler.Compile(entry, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "serotonin: %v\n", err)
			return
		}
		if err := writeOutput(output, res.BF); err != nil {
			fmt.Fprintf(os.Stderr, "serotonin: %v\n", err)
			return
		}
		fmt.Fprintf(os.Stderr, "serotonin: wrote %s (%d instructions)\n", output, len(res.BF))

		// watch the directory of every file in the build; directories cover
		// editors that replace files instead of writing them in place
		for _, file := range res.Files {
			if err := watcher.Add(filepath.Dir(file)); err != nil {
				fmt.Fprintf(os.Stderr, "serotonin: watching %s: %v\n", file, err)
			}
		}
	}

	if err := watcher.Add(filepath.Dir(entry)); err != nil {
		return fmt.Errorf("watching %s: %w", entry, err)
	}
	rebuild()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".sero" {
				continue
			}
			rebuild()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "serotonin: watch: %v\n", err)
		}
	}
}
