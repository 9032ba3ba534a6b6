package parser

import (
	"fmt"
	"strings"

	"github.com/Alextopher/serotonin/core/types"
)

// ErrorType represents different categories of parsing errors
type ErrorType int

const (
	ErrorSyntax ErrorType = iota
	ErrorUnexpected
	ErrorMissing
	ErrorInvalid
	ErrorUnclosed
)

func (e ErrorType) String() string {
	switch e {
	case ErrorSyntax:
		return "syntax error"
	case ErrorUnexpected:
		return "unexpected token"
	case ErrorMissing:
		return "missing"
	case ErrorInvalid:
		return "invalid"
	case ErrorUnclosed:
		return "unclosed"
	default:
		return "error"
	}
}

// ParseError is a parsing error with location and context information
type ParseError struct {
	Type    ErrorType
	Message string
	Token   types.Token
	Input   string
	// OpenedAt points at the opening bracket for unclosed-construct errors
	OpenedAt *types.Token
}

// Error returns the formatted message with a caret snippet under the
// offending source line
func (e ParseError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.OpenedAt != nil {
		msg += fmt.Sprintf(" (opened at %s)", e.OpenedAt.Pos)
	}
	if snippet := e.codeSnippet(); snippet != "" {
		msg += "\n" + snippet
	}
	return msg
}

// codeSnippet renders the error location in Rust/Clang style:
//
//	  --> 5:12
//	   |
//	 5 | while (C B ==? ...
//	   |            ^
func (e ParseError) codeSnippet() string {
	if e.Input == "" || e.Token.Pos.Line == 0 {
		return ""
	}

	lines := strings.Split(e.Input, "\n")
	if e.Token.Pos.Line > len(lines) {
		return ""
	}
	lineContent := lines[e.Token.Pos.Line-1]

	var snippet strings.Builder
	snippet.WriteString(fmt.Sprintf("  --> %d:%d\n", e.Token.Pos.Line, e.Token.Pos.Column))
	snippet.WriteString("   |\n")
	snippet.WriteString(fmt.Sprintf("%2d | %s\n", e.Token.Pos.Line, lineContent))
	snippet.WriteString("   | ")
	if e.Token.Pos.Column > 0 && e.Token.Pos.Column <= len(lineContent)+1 {
		snippet.WriteString(strings.Repeat(" ", e.Token.Pos.Column-1) + "^")
	}
	return snippet.String()
}

// newSyntaxError creates a syntax error at the current token
func (p *Parser) newSyntaxError(message string) error {
	return ParseError{Type: ErrorSyntax, Message: message, Token: p.current(), Input: p.input}
}

// newUnexpectedError creates an error for an unexpected token
func (p *Parser) newUnexpectedError(expected string) error {
	got := p.current()
	return ParseError{
		Type:    ErrorUnexpected,
		Message: fmt.Sprintf("expected %s, got %s", expected, got.Type),
		Token:   got,
		Input:   p.input,
	}
}

// newInvalidError creates an error for a malformed construct at tok
func (p *Parser) newInvalidError(message string, tok types.Token) error {
	return ParseError{Type: ErrorInvalid, Message: message, Token: tok, Input: p.input}
}

// newUnclosedError creates an error for a construct whose closer is missing
func (p *Parser) newUnclosedError(message string, opened types.Token) error {
	return ParseError{
		Type:     ErrorUnclosed,
		Message:  message,
		Token:    p.current(),
		Input:    p.input,
		OpenedAt: &opened,
	}
}
