package sql

import (
	"fmt"
	"strconv"
	"strings"
)

// reserved words cannot be used as table or column names.
var reserved = map[string]bool{
	"CREATE": true, "TABLE": true, "INSERT": true, "INTO": true, "VALUES": true,
	"SELECT": true, "FROM": true, "WHERE": true, "AND": true, "OR": true, "NOT": true,
}

// parser is a cursor over the tokens of one statement.
type parser struct {
	toks []token
	pos  int
	stmt string // statement name used as error prefix
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) atEOF() bool {
	return p.peek().kind == tokEOF
}

func (p *parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.stmt != "" {
		msg = p.stmt + ": " + msg
	}
	return &ParseError{Msg: msg, Offset: p.peek().offset}
}

func (p *parser) peekPunct(s string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == s
}

func (p *parser) acceptPunct(s string) bool {
	if p.peekPunct(s) {
		p.next()
		return true
	}
	return false
}

func (p *parser) peekKeyword(kw string) bool {
	t := p.peek()
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func (p *parser) acceptKeyword(kw string) bool {
	if p.peekKeyword(kw) {
		p.next()
		return true
	}
	return false
}

// ident consumes a table or column name.
func (p *parser) ident(what string) (string, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return "", p.errorf("expected %s, got %s", what, t)
	}
	if reserved[strings.ToUpper(t.text)] {
		return "", p.errorf("expected %s, got keyword %s", what, strings.ToUpper(t.text))
	}
	p.next()
	return t.text, nil
}

// identList parses "a, b, c )" after an opening parenthesis has been consumed.
func (p *parser) identList(what string) ([]string, error) {
	if p.peekPunct(")") {
		return nil, p.errorf("empty %s list", what)
	}
	var out []string
	seen := make(map[string]bool)
	for {
		name, err := p.ident(what + " name")
		if err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, p.errorf("duplicate %s %q", what, name)
		}
		seen[name] = true
		out = append(out, name)

		if p.acceptPunct(",") {
			continue
		}
		if p.acceptPunct(")") {
			return out, nil
		}
		if p.atEOF() {
			return nil, p.errorf("missing ')'")
		}
		return nil, p.errorf("expected ',' or ')' in %s list, got %s", what, p.peek())
	}
}

// literal consumes a single literal token and infers its type:
//   - integers:  1, -42
//   - strings:   'Alice'  (single quotes, '' escapes a quote)
//   - anything else word- or number-like is TEXT as written
func (p *parser) literal() (Value, error) {
	t := p.peek()
	switch t.kind {
	case tokString:
		p.next()
		return TextValue(t.text), nil
	case tokNumber:
		p.next()
		if i, err := strconv.ParseInt(t.text, 10, 64); err == nil {
			return IntValue(i), nil
		}
		return TextValue(t.text), nil
	case tokIdent:
		if reserved[strings.ToUpper(t.text)] {
			return Value{}, p.errorf("expected literal, got keyword %s", strings.ToUpper(t.text))
		}
		p.next()
		return TextValue(t.text), nil
	default:
		return Value{}, p.errorf("expected literal, got %s", t)
	}
}

// expectEnd reports trailing garbage after a complete statement.
func (p *parser) expectEnd() error {
	if p.atEOF() {
		return nil
	}
	if p.peekPunct(")") {
		return p.errorf("unbalanced ')'")
	}
	return p.errorf("unexpected %s", p.peek())
}
