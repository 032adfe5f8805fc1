package lexer

import (
	"strings"

	"ripple/internal/token"
)

type Lexer struct {
	input string

	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination

	line int // 1-based
	col  int // 1-based column of current char
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// single-character tokens that never combine with a following '='
var singles = map[byte]token.Type{
	';': token.SEMICOLON,
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LBRACE,
	'}': token.RBRACE,
	'[': token.LBRACKET,
	']': token.RBRACKET,
	',': token.COMMA,
	'.': token.DOT,
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.STAR,
	'%': token.PERCENT,
	'/': token.SLASH,
}

// tokens that have a two-character "<op>=" form
var pairs = map[byte][2]token.Type{
	'=': {token.ASSIGN, token.EQ},
	'<': {token.LT, token.LE},
	'>': {token.GT, token.GE},
	'!': {token.ILLEGAL, token.NE},
}

func (l *Lexer) NextToken() token.Token {
	for {
		l.skipWhitespace()
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.skipBlockComment()
			continue
		}
		break
	}

	// NEWLINE is a real token (statement separator)
	if l.ch == '\n' {
		tok := l.newToken(token.NEWLINE, "\n", l.line, l.col)
		l.readChar()
		return tok
	}
	if l.ch == 0 {
		return l.newToken(token.EOF, "", l.line, l.col)
	}

	startLine, startCol := l.line, l.col

	if tt, ok := singles[l.ch]; ok {
		tok := l.newToken(tt, string(l.ch), startLine, startCol)
		l.readChar()
		return tok
	}
	if tts, ok := pairs[l.ch]; ok {
		if l.peekChar() == '=' {
			lit := string([]byte{l.ch, '='})
			l.readChar()
			l.readChar()
			return l.newToken(tts[1], lit, startLine, startCol)
		}
		tok := l.newToken(tts[0], string(l.ch), startLine, startCol)
		l.readChar()
		return tok
	}

	switch {
	case l.ch == '"':
		return l.readStringToken(startLine, startCol)
	case isIdentStart(l.ch):
		lit := l.readIdentifier()
		return l.newToken(token.LookupIdent(lit), lit, startLine, startCol)
	case isDigit(l.ch):
		lit, isFloat := l.readNumber()
		if isFloat {
			return l.newToken(token.FLOAT, lit, startLine, startCol)
		}
		return l.newToken(token.INT, lit, startLine, startCol)
	}

	tok := l.newToken(token.ILLEGAL, string(l.ch), startLine, startCol)
	l.readChar()
	return tok
}

func (l *Lexer) newToken(t token.Type, lit string, line, col int) token.Token {
	return token.Token{Type: t, Literal: lit, Line: line, Col: col}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		if l.ch == '\n' {
			l.line++
			l.col = 0
		}
		l.ch = 0
		l.position = l.readPosition
		l.col++
		return
	}

	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++
	l.col++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	// the newline is left for NextToken to emit
}

func (l *Lexer) skipBlockComment() {
	l.readChar() // '/'
	l.readChar() // '*'
	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads a numeric literal including any trailing letters, so
// that malformed literals like 12ab reach the parser as one token.
func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	prefixed := l.ch == '0' && strings.IndexByte("xXbBoO", l.peekChar()) >= 0
	isFloat := false

	digits := func() {
		for isDigit(l.ch) || isIdentStart(l.ch) {
			if !prefixed && (l.ch == 'e' || l.ch == 'E') {
				isFloat = true
				l.readChar()
				if l.ch == '+' || l.ch == '-' {
					l.readChar()
				}
				continue
			}
			l.readChar()
		}
	}

	digits()
	if !prefixed && l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		digits()
	}
	return l.input[start:l.position], isFloat
}

func (l *Lexer) readStringToken(startLine, startCol int) token.Token {
	l.readChar() // opening quote

	var b strings.Builder
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return l.newToken(token.ILLEGAL, "unterminated string", startLine, startCol)
		}
		if l.ch == '\\' {
			switch l.peekChar() {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				// unknown escape: keep the backslash literally
				b.WriteByte('\\')
				l.readChar()
				continue
			}
			l.readChar()
			l.readChar()
			continue
		}
		b.WriteByte(l.ch)
		l.readChar()
	}
	l.readChar() // closing quote
	return l.newToken(token.STRING, b.String(), startLine, startCol)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
