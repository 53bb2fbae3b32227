package parser

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokKeyword

	tokLParen    // (
	tokRParen    // )
	tokComma     // ,
	tokSemicolon // ;
	tokDot       // .
	tokStar      // *
	tokPlus      // +
	tokMinus     // -
	tokSlash     // /
	tokEQ        // =
	tokNE        // <> or !=
	tokGT        // >
	tokGE        // >=
	tokLE        // <=
	tokLT        // <
)

type token struct {
	kind tokenKind
	text string // source text as written
	word string // upper-cased text, keywords only
	line int
	col  int
	// rune offsets of the token in the source
	start, end int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.text)
}

var keywords = map[string]struct{}{
	"ALL": {}, "AND": {}, "CREATE": {}, "DATABASE": {}, "DISTINCT": {},
	"DOUBLE": {}, "DROP": {}, "EXISTS": {}, "FLOAT": {}, "FROM": {},
	"IF": {}, "INSERT": {}, "INT": {}, "INTO": {}, "JOIN": {}, "KEY": {},
	"LONG": {}, "NOT": {}, "NULL": {}, "ON": {}, "OR": {}, "PRIMARY": {},
	"SELECT": {}, "STRING": {}, "TABLE": {}, "USE": {}, "VALUES": {},
	"WHERE": {},
}

// SyntaxError reports where the input stopped matching the grammar.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parser: line %d:%d: %s", e.Line, e.Col, e.Msg)
}

type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1, col: 1}
}

// tokenize returns every token of the input, terminated by tokEOF.
func tokenize(src string) ([]token, error) {
	l := newLexer(src)
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) peek(off int) rune {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		r := l.peek(0)
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '-' && l.peek(1) == '-':
			for l.pos < len(l.src) && l.peek(0) != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()

	start := l.pos
	t, err := l.scan()
	if err != nil {
		return token{}, err
	}
	t.start, t.end = start, l.pos
	return t, nil
}

func (l *lexer) scan() (token, error) {
	line, col := l.line, l.col
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: line, col: col}, nil
	}

	r := l.peek(0)
	switch {
	case r == '_' || unicode.IsLetter(r):
		start := l.pos
		for l.pos < len(l.src) && isIdentRune(l.peek(0)) {
			l.advance()
		}
		text := string(l.src[start:l.pos])
		if word := strings.ToUpper(text); isKeyword(word) {
			return token{kind: tokKeyword, text: text, word: word, line: line, col: col}, nil
		}
		return token{kind: tokIdent, text: text, line: line, col: col}, nil

	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peek(1))):
		text, err := l.number()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokNumber, text: text, line: line, col: col}, nil

	case r == '\'':
		text, err := l.stringLit()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokString, text: text, line: line, col: col}, nil
	}

	l.advance()
	tok := token{line: line, col: col, text: string(r)}
	switch r {
	case '(':
		tok.kind = tokLParen
	case ')':
		tok.kind = tokRParen
	case ',':
		tok.kind = tokComma
	case ';':
		tok.kind = tokSemicolon
	case '.':
		tok.kind = tokDot
	case '*':
		tok.kind = tokStar
	case '+':
		tok.kind = tokPlus
	case '-':
		tok.kind = tokMinus
	case '/':
		tok.kind = tokSlash
	case '=':
		tok.kind = tokEQ
	case '<':
		switch l.peek(0) {
		case '>':
			l.advance()
			tok.kind, tok.text = tokNE, "<>"
		case '=':
			l.advance()
			tok.kind, tok.text = tokLE, "<="
		default:
			tok.kind = tokLT
		}
	case '>':
		if l.peek(0) == '=' {
			l.advance()
			tok.kind, tok.text = tokGE, ">="
		} else {
			tok.kind = tokGT
		}
	case '!':
		if l.peek(0) != '=' {
			return token{}, l.errorf(line, col, "unexpected character %q", r)
		}
		l.advance()
		tok.kind, tok.text = tokNE, "<>"
	default:
		return token{}, l.errorf(line, col, "unexpected character %q", r)
	}
	return tok, nil
}

func isKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// number scans DIGIT+ ('.' DIGIT*)? EXPONENT? | '.' DIGIT+ EXPONENT?
// and returns the exact source text.
func (l *lexer) number() (string, error) {
	start := l.pos
	for unicode.IsDigit(l.peek(0)) {
		l.advance()
	}
	if l.peek(0) == '.' {
		l.advance()
		for unicode.IsDigit(l.peek(0)) {
			l.advance()
		}
	}
	if r := l.peek(0); r == 'e' || r == 'E' {
		line, col := l.line, l.col
		l.advance()
		if s := l.peek(0); s == '+' || s == '-' {
			l.advance()
		}
		if !unicode.IsDigit(l.peek(0)) {
			return "", l.errorf(line, col, "malformed exponent in numeric literal")
		}
		for unicode.IsDigit(l.peek(0)) {
			l.advance()
		}
	}
	if isIdentRune(l.peek(0)) {
		return "", l.errorf(l.line, l.col, "invalid character %q after numeric literal", l.peek(0))
	}
	return string(l.src[start:l.pos]), nil
}

// stringLit scans '...' with '' as an escaped quote and returns the quoted text.
func (l *lexer) stringLit() (string, error) {
	line, col := l.line, l.col
	start := l.pos
	l.advance() // opening quote
	for {
		if l.pos >= len(l.src) {
			return "", l.errorf(line, col, "unterminated string literal")
		}
		if l.advance() == '\'' {
			if l.peek(0) == '\'' {
				l.advance()
				continue
			}
			return string(l.src[start:l.pos]), nil
		}
	}
}
