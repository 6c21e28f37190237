package sql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// sqlLexer splits a statement into words, numbers, quoted strings and the
// punctuation used by the three supported statements. Rule order matters:
// strings first so punctuation inside quotes stays in the literal.
var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "Number", Pattern: `[-+]?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Operator", Pattern: `<>|!=|<=|>=|[<>]`},
	{Name: "Punct", Pattern: `[(),;*=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokOperator
	tokPunct
)

type token struct {
	kind   tokenKind
	text   string // for tokString: the unquoted, unescaped contents
	offset int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of statement"
	case tokString:
		return fmt.Sprintf("'%s'", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

var tokenKinds = func() map[lexer.TokenType]tokenKind {
	sym := sqlLexer.Symbols()
	return map[lexer.TokenType]tokenKind{
		lexer.EOF:       tokEOF,
		sym["Ident"]:    tokIdent,
		sym["Number"]:   tokNumber,
		sym["String"]:   tokString,
		sym["Operator"]: tokOperator,
		sym["Punct"]:    tokPunct,
	}
}()

var whitespaceType = sqlLexer.Symbols()["Whitespace"]

// tokenize lexes a statement. The result always ends with a tokEOF token.
func tokenize(query string) ([]token, error) {
	lex, err := sqlLexer.Lex("", strings.NewReader(query))
	if err != nil {
		return nil, parseErrorf(-1, "%v", err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		offset := -1
		var lerr *lexer.Error
		if errors.As(err, &lerr) {
			offset = lerr.Pos.Offset
		}
		return nil, parseErrorf(offset, "unexpected character or unterminated string")
	}

	toks := make([]token, 0, len(raw))
	for _, rt := range raw {
		if rt.Type == whitespaceType {
			continue
		}
		kind, ok := tokenKinds[rt.Type]
		if !ok {
			return nil, parseErrorf(rt.Pos.Offset, "unexpected token %q", rt.Value)
		}
		text := rt.Value
		if kind == tokString {
			text = strings.ReplaceAll(text[1:len(text)-1], "''", "'")
		}
		toks = append(toks, token{kind: kind, text: text, offset: rt.Pos.Offset})
	}
	if len(toks) == 0 || toks[len(toks)-1].kind != tokEOF {
		toks = append(toks, token{kind: tokEOF, offset: len(query)})
	}
	return toks, nil
}
