package rcs

import (
	"bytes"
	"fmt"
)

// TokenKind classifies a lexical unit of an RCS file.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenNumber
	TokenString
	TokenSymbol
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of file"
	case TokenIdentifier:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenSymbol:
		return "symbol"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a single lexical unit. For strings, Raw holds the decoded
// contents with "@@" collapsed to "@"; for everything else it is the source
// bytes. Offset is the position of the first source byte of the token.
type Token struct {
	Kind   TokenKind
	Raw    []byte
	Offset int
}

func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return t.Kind.String()
	case TokenString:
		return fmt.Sprintf("string(%d bytes)", len(t.Raw))
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Raw)
}

// Is reports whether t is the given identifier or symbol.
func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && string(t.Raw) == text
}

// Lexer is a forward-only tokenizer over the bytes of an RCS file.
type Lexer struct {
	source []byte
	buffer []byte
	length int

	peeked *Token
}

// NewLexer allocates a Lexer positioned at the start of source.
func NewLexer(source []byte) *Lexer {
	return &Lexer{source: source, buffer: source, length: len(source)}
}

// Restart repositions the lexer at offset, usually one obtained from
// Offset, and drops any peeked token.
func (l *Lexer) Restart(offset int) error {
	if offset < 0 || offset > l.length {
		return fmt.Errorf("%w: offset %d outside 0..%d", ErrMalformedInput, offset, l.length)
	}
	l.buffer = l.source[offset:]
	l.peeked = nil
	return nil
}

// Offset returns the offset of the next unread byte relative to the start
// of the source. A peeked token counts as unread.
func (l *Lexer) Offset() int {
	if l.peeked != nil {
		return l.peeked.Offset
	}
	return l.length - len(l.buffer)
}

// AtEOF returns true when only whitespace remains.
func (l *Lexer) AtEOF() bool {
	if l.peeked != nil {
		return l.peeked.Kind == TokenEOF
	}
	l.skipSpace()
	return len(l.buffer) == 0
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if l.peeked == nil {
		tok, err := l.scan()
		if err != nil {
			return tok, err
		}
		l.peeked = &tok
	}
	return *l.peeked, nil
}

// Next consumes and returns the next token. At the end of input it keeps
// returning a TokenEOF token.
func (l *Lexer) Next() (Token, error) {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok, nil
	}
	return l.scan()
}

// Expect consumes the next token and fails unless it has the given kind.
func (l *Lexer) Expect(kind TokenKind) (Token, error) {
	tok, err := l.Next()
	if err != nil {
		return tok, err
	}
	if tok.Kind != kind {
		return tok, &SyntaxError{Offset: tok.Offset, Expected: kind.String(), Found: tok.String()}
	}
	return tok, nil
}

// ExpectKeyword consumes the next token and fails unless it is the
// identifier keyword.
func (l *Lexer) ExpectKeyword(keyword string) error {
	tok, err := l.Next()
	if err != nil {
		return err
	}
	if !tok.Is(TokenIdentifier, keyword) {
		return &SyntaxError{Offset: tok.Offset, Expected: fmt.Sprintf("%q", keyword), Found: tok.String()}
	}
	return nil
}

// ExpectSymbol consumes the next token and fails unless it is the symbol.
func (l *Lexer) ExpectSymbol(symbol byte) error {
	tok, err := l.Next()
	if err != nil {
		return err
	}
	if !tok.Is(TokenSymbol, string(symbol)) {
		return &SyntaxError{Offset: tok.Offset, Expected: fmt.Sprintf("'%c'", symbol), Found: tok.String()}
	}
	return nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isSpecial(c byte) bool {
	switch c {
	case ';', ':', ',', '$', '@':
		return true
	}
	return false
}

func (l *Lexer) skipSpace() {
	idx := 0
	for idx < len(l.buffer) && isSpace(l.buffer[idx]) {
		idx++
	}
	l.buffer = l.buffer[idx:]
}

func (l *Lexer) scan() (Token, error) {
	l.skipSpace()
	offset := l.length - len(l.buffer)
	if len(l.buffer) == 0 {
		return Token{Kind: TokenEOF, Offset: offset}, nil
	}

	c := l.buffer[0]
	switch {
	case c == '@':
		return l.scanString(offset)
	case isSpecial(c):
		tok := Token{Kind: TokenSymbol, Raw: l.buffer[:1], Offset: offset}
		l.buffer = l.buffer[1:]
		return tok, nil
	}

	end := 0
	numeric := true
	for end < len(l.buffer) && !isSpace(l.buffer[end]) && !isSpecial(l.buffer[end]) {
		if b := l.buffer[end]; b != '.' && (b < '0' || b > '9') {
			numeric = false
		}
		end++
	}
	tok := Token{Kind: TokenIdentifier, Raw: l.buffer[:end], Offset: offset}
	if numeric {
		tok.Kind = TokenNumber
	}
	l.buffer = l.buffer[end:]
	return tok, nil
}

// scanString reads an @-delimited string. A doubled "@@" stands for a
// single "@"; the first lone "@" terminates the string. The contents are
// copied so the token does not alias the source.
func (l *Lexer) scanString(offset int) (Token, error) {
	body := l.buffer[1:]
	var decoded []byte
	pos := 0
	for {
		at := bytes.IndexByte(body[pos:], '@')
		if at == -1 {
			return Token{}, &SyntaxError{Offset: offset, Expected: "closing '@' of string", Found: "end of file"}
		}
		at += pos
		if at+1 < len(body) && body[at+1] == '@' {
			decoded = append(decoded, body[pos:at+1]...)
			pos = at + 2
			continue
		}
		decoded = append(decoded, body[pos:at]...)
		l.buffer = body[at+1:]
		if decoded == nil {
			decoded = []byte{}
		}
		return Token{Kind: TokenString, Raw: decoded, Offset: offset}, nil
	}
}
