// Package macros holds the built-in macro registry.
//
// A macro site `{ text } name!` is expanded before constraint matching by the
// native handler registered under name. The registry is a closed set: new
// macros require a compiler build, and the handler signature is the only
// extension point.
package macros

import (
	"fmt"

	"github.com/Alextopher/serotonin/core/types"
)

// Handler expands a macro body (whitespace preserved, exactly as written
// between the braces) into a term sequence
type Handler func(body string) ([]types.Term, error)

var registry = map[string]Handler{}

func register(name string, h Handler) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("macro %q registered twice", name))
	}
	registry[name] = h
}

func init() {
	register("autoperm", expandAutoperm)
}

// Names returns the registered macro names, for diagnostics
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Expand runs the handler registered under name on body
func Expand(name, body string) ([]types.Term, error) {
	h, ok := registry[name]
	if !ok {
		return nil, &UnknownError{Name: name}
	}
	terms, err := h(body)
	if err != nil {
		return nil, &ExpandError{Name: name, Cause: err}
	}
	return terms, nil
}

// UnknownError reports a macro invocation with no registered handler
type UnknownError struct {
	Name string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown macro %s!", e.Name)
}

// ExpandError reports a handler failure
type ExpandError struct {
	Name  string
	Cause error
}

func (e *ExpandError) Error() string {
	return fmt.Sprintf("macro %s! failed: %v", e.Name, e.Cause)
}

func (e *ExpandError) Unwrap() error { return e.Cause }
