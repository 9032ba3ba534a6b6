// Package parser turns a token stream into rule definitions.
//
// The grammar is small: a file is a sequence of IMPORT directives and rules
// of the form `head (constraints) kind body ;` where the constraint list is
// optional and kind is one of ==, ==?, ==!.
package parser

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/Alextopher/serotonin/core/types"
	"github.com/Alextopher/serotonin/runtime/lexer"
)

// Import is a single IMPORT directive
type Import struct {
	Name string
	Pos  types.Position
}

// File is the parsed form of one source file
type File struct {
	Imports []Import
	Rules   []types.RuleDef
}

// Parser consumes a token stream with one token of lookahead
type Parser struct {
	tokens []types.Token
	pos    int
	input  string // original source, for error snippets
}

// Parse lexes and parses a complete source file
func Parse(input string) (*File, error) {
	tokens, err := lexer.New(input).Tokenize()
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens, input)
}

// ParseTokens parses an already-lexed token stream. input is used only for
// error snippets and may be empty.
func ParseTokens(tokens []types.Token, input string) (*File, error) {
	p := &Parser{tokens: tokens, input: input}
	file := &File{}

	for !p.atEOF() {
		if p.current().Type == types.IMPORT {
			imp, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			file.Imports = append(file.Imports, imp)
			continue
		}

		rule, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		file.Rules = append(file.Rules, rule)
	}

	return file, nil
}

// parseImport parses `IMPORT name ;`
func (p *Parser) parseImport() (Import, error) {
	pos := p.current().Pos
	p.advance() // IMPORT

	if p.current().Type != types.IDENT {
		return Import{}, p.newUnexpectedError("library name after IMPORT")
	}
	name := p.current().Text
	p.advance()

	if p.current().Type != types.SEMICOLON {
		return Import{}, p.newUnexpectedError("';' after IMPORT directive")
	}
	p.advance()

	return Import{Name: name, Pos: pos}, nil
}

// parseRule parses `head (constraints) kind body ;`
func (p *Parser) parseRule() (types.RuleDef, error) {
	head := p.current()
	if head.Type != types.IDENT {
		return types.RuleDef{}, p.newUnexpectedError("rule head")
	}
	p.advance()

	var params []types.Constraint
	if p.current().Type == types.LPAREN {
		var err error
		params, err = p.parseConstraints()
		if err != nil {
			return types.RuleDef{}, err
		}
	}

	var kind types.RuleKind
	switch p.current().Type {
	case types.EQ:
		kind = types.Subst
	case types.EQ_GEN:
		kind = types.Gen
	case types.EQ_EXEC:
		kind = types.Exec
	default:
		return types.RuleDef{}, p.newUnexpectedError("'==', '==?' or '==!'")
	}
	p.advance()

	body, err := p.parseTerms(types.SEMICOLON)
	if err != nil {
		return types.RuleDef{}, err
	}
	p.advance() // SEMICOLON

	return types.RuleDef{Head: head.Text, Params: params, Kind: kind, Body: body}, nil
}

// parseConstraints parses a parenthesised parameter list. The spelling
// convention: `@` matches any byte, `?` any quotation, a literal matches that
// exact byte, a bracketed body matches a structurally equal quotation, and an
// identifier binds - a quotation when it starts with an upper-case letter, a
// byte otherwise.
func (p *Parser) parseConstraints() ([]types.Constraint, error) {
	open := p.current()
	p.advance() // LPAREN

	var params []types.Constraint
	for {
		tok := p.current()
		switch tok.Type {
		case types.RPAREN:
			p.advance()
			return params, nil

		case types.EOF:
			return nil, p.newUnclosedError("constraint list is never closed", open)

		case types.NUMBER:
			b, err := p.byteValue(tok)
			if err != nil {
				return nil, err
			}
			params = append(params, types.Constraint{Kind: types.ByteExact, Byte: b})
			p.advance()

		case types.CHAR:
			params = append(params, types.Constraint{Kind: types.ByteExact, Byte: tok.Text[0]})
			p.advance()

		case types.LBRACKET:
			body, err := p.parseQuotation()
			if err != nil {
				return nil, err
			}
			params = append(params, types.Constraint{Kind: types.QuotExact, Body: body})

		case types.IDENT:
			params = append(params, identConstraint(tok.Text))
			p.advance()

		default:
			return nil, p.newUnexpectedError("constraint or ')'")
		}
	}
}

// identConstraint classifies a bare identifier inside a parameter list
func identConstraint(word string) types.Constraint {
	switch word {
	case "@":
		return types.Constraint{Kind: types.ByteAny}
	case "?":
		return types.Constraint{Kind: types.QuotAny}
	}
	r, _ := utf8.DecodeRuneInString(word)
	if unicode.IsUpper(r) {
		return types.Constraint{Kind: types.QuotNamed, ID: word}
	}
	return types.Constraint{Kind: types.ByteNamed, ID: word}
}

// parseTerms parses a term sequence up to (not consuming) the stop token
func (p *Parser) parseTerms(stop types.TokenType) ([]types.Term, error) {
	var terms []types.Term
	for {
		tok := p.current()
		if tok.Type == stop {
			return terms, nil
		}

		switch tok.Type {
		case types.EOF:
			if stop == types.RBRACKET {
				return nil, p.newSyntaxError("quotation is never closed")
			}
			return nil, p.newSyntaxError("rule body is missing its ';'")

		case types.NUMBER:
			b, err := p.byteValue(tok)
			if err != nil {
				return nil, err
			}
			terms = append(terms, types.Num(b))
			p.advance()

		case types.CHAR:
			terms = append(terms, types.Char(tok.Text[0]))
			p.advance()

		case types.STRING:
			terms = append(terms, types.Str([]byte(tok.Text)))
			p.advance()

		case types.BF_BLOCK:
			terms = append(terms, types.BF(tok.Text))
			p.advance()

		case types.IDENT:
			terms = append(terms, types.Call(tok.Text))
			p.advance()

		case types.LBRACKET:
			body, err := p.parseQuotation()
			if err != nil {
				return nil, err
			}
			terms = append(terms, types.Quot(body))

		case types.MACRO_BODY:
			body := tok.Text
			p.advance()
			nameTok := p.current()
			if nameTok.Type != types.MACRO_NAME {
				return nil, p.newUnexpectedError("macro name ending in '!' after '{...}'")
			}
			name := nameTok.Text[:len(nameTok.Text)-1] // strip the '!'
			terms = append(terms, types.Macro(name, body))
			p.advance()

		case types.MACRO_NAME:
			return nil, p.newInvalidError(
				fmt.Sprintf("macro %s has no '{...}' body before it", tok.Text), tok)

		default:
			return nil, p.newUnexpectedError("term")
		}
	}
}

// parseQuotation parses `[ terms ]` starting at LBRACKET
func (p *Parser) parseQuotation() ([]types.Term, error) {
	open := p.current()
	p.advance() // LBRACKET

	body, err := p.parseTerms(types.RBRACKET)
	if err != nil {
		if pe, ok := err.(ParseError); ok && pe.OpenedAt == nil {
			pe.OpenedAt = &open
			return nil, pe
		}
		return nil, err
	}
	p.advance() // RBRACKET
	return body, nil
}

// byteValue validates a NUMBER token's range
func (p *Parser) byteValue(tok types.Token) (byte, error) {
	n, err := strconv.Atoi(tok.Text)
	if err != nil || n < 0 || n > 255 {
		return 0, p.newInvalidError(
			fmt.Sprintf("byte literal %s out of range 0..=255", tok.Text), tok)
	}
	return byte(n), nil
}

func (p *Parser) current() types.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return types.Token{Type: types.EOF}
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *Parser) atEOF() bool {
	return p.pos >= len(p.tokens)
}
