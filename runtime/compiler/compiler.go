// Package compiler wires the pipeline together: load and parse the sources,
// build the rule table, reduce the program seed to terminals, and emit BF.
package compiler

import (
	"log/slog"
	"path/filepath"

	"github.com/Alextopher/serotonin/core/types"
	"github.com/Alextopher/serotonin/runtime/bf"
	"github.com/Alextopher/serotonin/runtime/loader"
	"github.com/Alextopher/serotonin/runtime/rewriter"
)

// EntryPoint is the rule every program is reduced from
const EntryPoint types.Name = "main"

// Option configures a compilation
type Option func(*config)

type config struct {
	libDirs    []string
	stepBudget int
	fuel       int
	logger     *slog.Logger
}

// WithLibDirs appends library search directories, tried after the entry
// file's own directory and its libraries/ subdirectory
func WithLibDirs(dirs ...string) Option {
	return func(c *config) { c.libDirs = append(c.libDirs, dirs...) }
}

// WithStepBudget overrides the reduction step budget
func WithStepBudget(n int) Option {
	return func(c *config) { c.stepBudget = n }
}

// WithFuel overrides the staged interpreter's instruction budget
func WithFuel(n int) Option {
	return func(c *config) { c.fuel = n }
}

// WithLogger enables compiler debug tracing
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Result is one successful compilation
type Result struct {
	// BF is the emitted program: a single line of BF instructions
	BF string
	// Files lists every source file that went into the compilation
	Files []string
}

// Compile reads the file at entryPath, resolves its imports, and compiles
// rule main to BF
func Compile(entryPath string, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)

	dir := filepath.Dir(entryPath)
	dirs := append([]string{dir, filepath.Join(dir, "libraries")}, cfg.libDirs...)

	prog, err := loader.Load(entryPath, dirs)
	if err != nil {
		return nil, err
	}
	return compileProgram(prog, cfg)
}

// CompileSource compiles source text directly. Imports resolve against the
// configured library directories only.
func CompileSource(src string, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)

	prog, err := loader.LoadSource(src, "<source>", cfg.libDirs)
	if err != nil {
		return nil, err
	}
	return compileProgram(prog, cfg)
}

func newConfig(opts []Option) *config {
	cfg := &config{
		stepBudget: rewriter.DefaultStepBudget,
		fuel:       bf.DefaultFuel,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func compileProgram(prog *loader.Program, cfg *config) (*Result, error) {
	table := rewriter.NewTable()
	table.DefineAll(prog.Rules)

	r := rewriter.New(table,
		rewriter.WithStepBudget(cfg.stepBudget),
		rewriter.WithFuel(cfg.fuel),
		rewriter.WithLogger(cfg.logger),
	)

	terms, err := r.Reduce([]types.Term{types.Call(EntryPoint)})
	if err != nil {
		return nil, err
	}

	return &Result{BF: bf.Emit(terms), Files: prog.Files}, nil
}
