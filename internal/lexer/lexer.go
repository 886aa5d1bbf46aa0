// Package lexer turns bardolph script source into a stream of tokens.
package lexer

import (
	"strings"

	"github.com/EmonFan/bardolph/internal/token"
)

// Lexer scans a complete source string and hands out tokens one at a time
// via NextToken. It never returns an error itself; malformed input becomes
// an UNKNOWN token that the parser reports with line context.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	line         int
}

// New creates a Lexer over the given source text.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

// NextToken scans and returns the next token, advancing past it.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()
	line := l.line

	switch {
	case l.ch == 0:
		return token.Token{Kind: token.EOF, Line: line}
	case l.ch == '"':
		return l.readString(line)
	case l.ch == '{':
		return l.readExpression(line)
	case isDigit(l.ch):
		return l.readNumberOrTimePattern(line)
	case isNameStart(l.ch):
		return l.readWordOrTimePattern(line)
	default:
		ch := l.ch
		l.readChar()
		return token.Token{Kind: token.UNKNOWN, Lexeme: string(ch), Line: line}
	}
}

func (l *Lexer) readString(line int) token.Token {
	l.readChar() // consume opening quote
	start := l.position
	for l.ch != '"' && l.ch != 0 {
		l.readChar()
	}
	lit := l.input[start:l.position]
	if l.ch == '"' {
		l.readChar()
	}
	return token.Token{Kind: token.STRING, Lexeme: lit, Line: line}
}

func (l *Lexer) readExpression(line int) token.Token {
	l.readChar() // consume '{'
	start := l.position
	depth := 1
	for depth > 0 && l.ch != 0 {
		if l.ch == '{' {
			depth++
		} else if l.ch == '}' {
			depth--
			if depth == 0 {
				break
			}
		}
		l.readChar()
	}
	lit := l.input[start:l.position]
	if l.ch == '}' {
		l.readChar()
	}
	return token.Token{Kind: token.EXPRESSION, Lexeme: strings.TrimSpace(lit), Line: line}
}

// readNumberOrTimePattern scans a digit sequence. It may turn out to be a
// NUMBER ("12", "12.5") or the HH part of a TIME_PATTERN ("12:30", "1*:30")
// if a ':' immediately follows the digits (optionally after one '*').
func (l *Lexer) readNumberOrTimePattern(line int) token.Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '*' && l.peekChar() == ':' {
		l.readChar()
	}
	if l.ch == ':' {
		return l.finishTimePattern(start, line)
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return token.Token{Kind: token.NUMBER, Lexeme: l.input[start:l.position], Line: line}
}

// readWordOrTimePattern scans a NAME/keyword/register, or the HH part of a
// TIME_PATTERN written with a leading '*' digit, e.g. "*:30", which is
// reached via isNameStart('*').
func (l *Lexer) readWordOrTimePattern(line int) token.Token {
	if l.ch == '*' {
		return l.readStarLedToken(line)
	}
	start := l.position
	for isNameChar(l.ch) {
		l.readChar()
	}
	word := l.input[start:l.position]
	if l.ch == ':' {
		return l.finishTimePattern(start, line)
	}
	return token.Token{Kind: token.Lookup(word), Lexeme: word, Line: line}
}

// readStarLedToken handles a field that begins with '*', which is only
// meaningful as the HH half of a time pattern ("*:30", "*d:dd").
func (l *Lexer) readStarLedToken(line int) token.Token {
	start := l.position
	l.readChar() // consume '*'
	if isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == ':' {
		return l.finishTimePattern(start, line)
	}
	return token.Token{Kind: token.UNKNOWN, Lexeme: l.input[start:l.position], Line: line}
}

func (l *Lexer) finishTimePattern(start, line int) token.Token {
	l.readChar() // consume ':'
	if l.ch == '*' {
		l.readChar()
		if isDigit(l.ch) {
			l.readChar()
		}
	} else {
		for isDigit(l.ch) {
			l.readChar()
		}
		if l.ch == '*' {
			l.readChar()
		}
	}
	return token.Token{Kind: token.TIME_PATTERN, Lexeme: l.input[start:l.position], Line: line}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isNameStart(ch byte) bool {
	return ch == '*' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isNameChar(ch byte) bool {
	return isNameStart(ch) || isDigit(ch) || ch == '-'
}
