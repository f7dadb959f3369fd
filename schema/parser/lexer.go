package parser

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokInt
	tokLBrace    // {
	tokRBrace    // }
	tokLBracket  // [
	tokRBracket  // ]
	tokLAngle    // <
	tokRAngle    // >
	tokLParen    // (
	tokRParen    // )
	tokColon     // :
	tokPathSep   // ::
	tokSemi      // ;
	tokComma     // ,
	tokQuestion  // ?
	tokAssign    // =
	tokHash      // #
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string literal"
	case tokInt:
		return "integer literal"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokLAngle:
		return "'<'"
	case tokRAngle:
		return "'>'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokColon:
		return "':'"
	case tokPathSep:
		return "'::'"
	case tokSemi:
		return "';'"
	case tokComma:
		return "','"
	case tokQuestion:
		return "'?'"
	case tokAssign:
		return "'='"
	case tokHash:
		return "'#'"
	default:
		return "unknown token"
	}
}

type token struct {
	kind tokenKind
	lit  string
	line int
	col  int
}

// lexer turns schema source into a token stream. It tracks line and
// column for error reporting and skips // comments.
type lexer struct {
	path string
	src  []byte
	pos  int
	line int
	col  int
}

func newLexer(src []byte, path string) *lexer {
	return &lexer{path: path, src: src, line: 1, col: 1}
}

func (l *lexer) errorf(line, col int, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Path: l.path,
		Line: line,
		Col:  col,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func (l *lexer) skipSpaceAndComments() error {
	for l.pos < len(l.src) {
		b := l.peekByte()
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.advance()
		case b == '/':
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
				for l.pos < len(l.src) && l.peekByte() != '\n' {
					l.advance()
				}
				continue
			}
			return l.errorf(l.line, l.col, "unexpected character %q", b)
		default:
			return nil
		}
	}
	return nil
}

// next returns the next token or a *SyntaxError.
func (l *lexer) next() (token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token{}, err
	}
	line, col := l.line, l.col
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: line, col: col}, nil
	}
	b := l.peekByte()
	switch {
	case b == '_' || b < utf8.RuneSelf && unicode.IsLetter(rune(b)):
		start := l.pos
		for l.pos < len(l.src) {
			c := l.peekByte()
			if c == '_' || c < utf8.RuneSelf && (unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))) {
				l.advance()
				continue
			}
			break
		}
		return token{kind: tokIdent, lit: string(l.src[start:l.pos]), line: line, col: col}, nil
	case b >= '0' && b <= '9':
		start := l.pos
		for l.pos < len(l.src) && l.peekByte() >= '0' && l.peekByte() <= '9' {
			l.advance()
		}
		return token{kind: tokInt, lit: string(l.src[start:l.pos]), line: line, col: col}, nil
	case b == '"':
		l.advance()
		start := l.pos
		for l.pos < len(l.src) && l.peekByte() != '"' {
			if l.peekByte() == '\n' {
				return token{}, l.errorf(line, col, "unterminated string literal")
			}
			l.advance()
		}
		if l.pos >= len(l.src) {
			return token{}, l.errorf(line, col, "unterminated string literal")
		}
		lit := string(l.src[start:l.pos])
		l.advance() // closing quote
		return token{kind: tokString, lit: lit, line: line, col: col}, nil
	}
	l.advance()
	var kind tokenKind
	switch b {
	case '{':
		kind = tokLBrace
	case '}':
		kind = tokRBrace
	case '[':
		kind = tokLBracket
	case ']':
		kind = tokRBracket
	case '<':
		kind = tokLAngle
	case '>':
		kind = tokRAngle
	case '(':
		kind = tokLParen
	case ')':
		kind = tokRParen
	case ';':
		kind = tokSemi
	case ',':
		kind = tokComma
	case '?':
		kind = tokQuestion
	case '=':
		kind = tokAssign
	case '#':
		kind = tokHash
	case ':':
		if l.peekByte() == ':' {
			l.advance()
			kind = tokPathSep
		} else {
			kind = tokColon
		}
	default:
		return token{}, l.errorf(line, col, "unexpected character %q", b)
	}
	return token{kind: kind, lit: string(b), line: line, col: col}, nil
}
