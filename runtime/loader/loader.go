// Package loader resolves IMPORT directives and assembles the rule list for
// one compilation.
//
// `IMPORT name;` loads name.sero from the library search path, once per name
// no matter how many files ask for it. A library's rules are defined before
// the rules of the file importing it, so user definitions shadow library
// definitions under the later-wins matching order.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alextopher/serotonin/core/types"
	"github.com/Alextopher/serotonin/runtime/parser"
)

// Program is the fully loaded input of one compilation
type Program struct {
	Rules []types.RuleDef
	// Files lists every source file read, entry first, for watch mode
	Files []string
}

// Load reads the entry file and resolves its imports against libDirs in
// order, first match wins
func Load(entryPath string, libDirs []string) (*Program, error) {
	src, err := os.ReadFile(entryPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", entryPath, err)
	}
	return LoadSource(string(src), entryPath, libDirs)
}

// LoadSource is Load for source text already in memory. name is used in
// diagnostics and the file list.
func LoadSource(src, name string, libDirs []string) (*Program, error) {
	l := &loader{dirs: libDirs, seen: make(map[string]bool)}
	rules, err := l.loadSource(src, name)
	if err != nil {
		return nil, err
	}
	return &Program{Rules: rules, Files: l.files}, nil
}

type loader struct {
	dirs  []string
	seen  map[string]bool
	files []string
}

func (l *loader) loadSource(src, path string) ([]types.RuleDef, error) {
	l.files = append(l.files, path)

	file, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var rules []types.RuleDef
	for _, imp := range file.Imports {
		if l.seen[imp.Name] {
			continue
		}
		l.seen[imp.Name] = true

		libPath, err := l.resolve(imp.Name)
		if err != nil {
			return nil, err
		}
		libSrc, err := os.ReadFile(libPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", libPath, err)
		}
		libRules, err := l.loadSource(string(libSrc), libPath)
		if err != nil {
			return nil, err
		}
		rules = append(rules, libRules...)
	}

	return append(rules, file.Rules...), nil
}

// resolve locates name.sero in the search path
func (l *loader) resolve(name string) (string, error) {
	filename := name + ".sero"
	for _, dir := range l.dirs {
		candidate := filepath.Join(dir, filename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", &UnresolvedImportError{Name: name, Searched: l.dirs}
}

// UnresolvedImportError reports an IMPORT whose library file was not found
type UnresolvedImportError struct {
	Name     string
	Searched []string
}

func (e *UnresolvedImportError) Error() string {
	return fmt.Sprintf("unresolved import %q: no %s.sero in %s",
		e.Name, e.Name, strings.Join(e.Searched, ", "))
}
