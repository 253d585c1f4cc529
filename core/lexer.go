package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// TokenType identifies the lexical class of a Token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenWhitespace
	TokenComment
	TokenKeyword // obj, endobj, stream, true, null...
	TokenInteger
	TokenReal
	TokenString
	TokenHexString // digits only, undecoded
	TokenName      // without the leading slash, #xx resolved
	TokenArrayStart
	TokenArrayEnd
	TokenDictStart
	TokenDictEnd
	TokenIndirectRef // the R of "n g R"
)

// Token is one lexical unit of PDF object syntax.
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int64
}

func (t *Token) is(typ TokenType, value string) bool {
	return t != nil && t.Type == typ && string(t.Value) == value
}

// byte classes
const (
	clsRegular uint8 = iota
	clsSpace
	clsDelim
)

var byteClass [256]uint8

func init() {
	for _, c := range []byte("\x00\t\n\f\r ") {
		byteClass[c] = clsSpace
	}
	for _, c := range []byte("()<>[]{}/%") {
		byteClass[c] = clsDelim
	}
}

func isWhitespace(b byte) bool { return byteClass[b] == clsSpace }
func isDelimiter(b byte) bool  { return byteClass[b] == clsDelim }
func isRegular(b byte) bool    { return byteClass[b] == clsRegular }
func isDigit(b byte) bool      { return '0' <= b && b <= '9' }

func unhex(b byte) (byte, bool) {
	switch {
	case '0' <= b && b <= '9':
		return b - '0', true
	case 'a' <= b && b <= 'f':
		return b - 'a' + 10, true
	case 'A' <= b && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// Lexer splits PDF object syntax into tokens. It also exposes raw reads
// so the parser can consume stream bodies.
type Lexer struct {
	r     *bufio.Reader
	pos   int64
	start int64
}

// NewLexer returns a Lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r)}
}

// Offset returns the number of bytes consumed so far.
func (l *Lexer) Offset() int64 { return l.pos }

// TokenStart returns the offset of the token most recently started by
// NextToken, including one that failed to scan.
func (l *Lexer) TokenStart() int64 { return l.start }

func (l *Lexer) peekByte() (byte, error) {
	p, err := l.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (l *Lexer) next() (byte, error) {
	b, err := l.r.ReadByte()
	if err == nil {
		l.pos++
	}
	return b, err
}

func (l *Lexer) skip(n int) {
	d, _ := l.r.Discard(n)
	l.pos += int64(d)
}

// collect consumes bytes while keep reports true.
func (l *Lexer) collect(keep func(b byte) bool) ([]byte, error) {
	var out []byte
	for {
		b, err := l.peekByte()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if !keep(b) {
			return out, nil
		}
		l.skip(1)
		out = append(out, b)
	}
}

// NextToken returns the next token, or a TokenEOF token at end of input.
func (l *Lexer) NextToken() (*Token, error) {
	if _, err := l.collect(isWhitespace); err != nil {
		return nil, err
	}
	start := l.pos
	l.start = start
	b, err := l.peekByte()
	if err == io.EOF {
		return &Token{Type: TokenEOF, Pos: start}, nil
	}
	if err != nil {
		return nil, err
	}

	tok := func(typ TokenType, value []byte) (*Token, error) {
		return &Token{Type: typ, Value: value, Pos: start}, nil
	}

	switch {
	case b == '%':
		return l.comment(start)
	case b == '(':
		return l.literal(start)
	case b == '/':
		return l.name(start)
	case b == '[':
		l.skip(1)
		return tok(TokenArrayStart, []byte("["))
	case b == ']':
		l.skip(1)
		return tok(TokenArrayEnd, []byte("]"))
	case b == '<' || b == '>':
		if two, _ := l.r.Peek(2); len(two) == 2 && two[1] == b {
			l.skip(2)
			if b == '<' {
				return tok(TokenDictStart, []byte("<<"))
			}
			return tok(TokenDictEnd, []byte(">>"))
		}
		if b == '<' {
			return l.hexString(start)
		}
	case isDigit(b) || b == '+' || b == '-' || b == '.':
		return l.number(start)
	case !isDelimiter(b):
		// keywords, and content stream operators such as T* and '
		word, err := l.collect(isRegular)
		if err != nil {
			return nil, err
		}
		if string(word) == "R" {
			return tok(TokenIndirectRef, word)
		}
		return tok(TokenKeyword, word)
	}
	return nil, fmt.Errorf("unexpected character %q at position %d", b, start)
}

// comment reads through the end of line; the EOL itself is consumed but not
// returned.
func (l *Lexer) comment(start int64) (*Token, error) {
	l.skip(1)
	text, err := l.collect(func(c byte) bool { return c != '\r' && c != '\n' })
	if err != nil {
		return nil, err
	}
	if b, err := l.peekByte(); err == nil {
		l.skip(1)
		if c, err := l.peekByte(); b == '\r' && err == nil && c == '\n' {
			l.skip(1)
		}
	}
	return &Token{Type: TokenComment, Value: text, Pos: start}, nil
}

func (l *Lexer) literal(start int64) (*Token, error) {
	l.skip(1)
	var buf bytes.Buffer
	for depth := 1; ; {
		b, err := l.next()
		if err != nil {
			return nil, fmt.Errorf("unterminated string starting at %d: %w", start, err)
		}
		switch b {
		case '(':
			depth++
		case ')':
			if depth--; depth == 0 {
				return &Token{Type: TokenString, Value: buf.Bytes(), Pos: start}, nil
			}
		case '\\':
			if err := l.escape(&buf); err != nil {
				return nil, fmt.Errorf("unterminated string starting at %d: %w", start, err)
			}
			continue
		}
		buf.WriteByte(b)
	}
}

var escapes = map[byte]byte{'n': '\n', 'r': '\r', 't': '\t', 'b': '\b', 'f': '\f'}

func (l *Lexer) escape(buf *bytes.Buffer) error {
	b, err := l.next()
	if err != nil {
		return err
	}
	if c, ok := escapes[b]; ok {
		buf.WriteByte(c)
		return nil
	}
	switch {
	case b == '\n':
	case b == '\r':
		if c, err := l.peekByte(); err == nil && c == '\n' {
			l.skip(1)
		}
	case '0' <= b && b <= '7':
		v := b - '0'
		for i := 0; i < 2; i++ {
			c, err := l.peekByte()
			if err != nil || c < '0' || c > '7' {
				break
			}
			l.skip(1)
			v = v<<3 | (c - '0')
		}
		buf.WriteByte(v)
	default:
		buf.WriteByte(b)
	}
	return nil
}

func (l *Lexer) hexString(start int64) (*Token, error) {
	l.skip(1)
	var digits []byte
	for {
		b, err := l.next()
		if err != nil {
			return nil, fmt.Errorf("unterminated hex string starting at %d: %w", start, err)
		}
		if b == '>' {
			return &Token{Type: TokenHexString, Value: digits, Pos: start}, nil
		}
		if isWhitespace(b) {
			continue
		}
		if _, ok := unhex(b); !ok {
			return nil, fmt.Errorf("invalid hex digit %q at position %d", b, l.pos-1)
		}
		digits = append(digits, b)
	}
}

func (l *Lexer) name(start int64) (*Token, error) {
	l.skip(1)
	raw, err := l.collect(func(c byte) bool { return !isWhitespace(c) && !isDelimiter(c) })
	if err != nil {
		return nil, err
	}
	value := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			hi, ok1 := unhex(raw[i+1])
			lo, ok2 := unhex(raw[i+2])
			if ok1 && ok2 {
				value = append(value, hi<<4|lo)
				i += 2
				continue
			}
		}
		value = append(value, raw[i])
	}
	return &Token{Type: TokenName, Value: value, Pos: start}, nil
}

// number reads a run of regular characters and checks that it is a plain
// decimal number: an optional sign, digits and at most one point.
func (l *Lexer) number(start int64) (*Token, error) {
	text, err := l.collect(isRegular)
	if err != nil {
		return nil, err
	}
	digits, dots := 0, 0
	for i, c := range text {
		switch {
		case isDigit(c):
			digits++
		case c == '.':
			dots++
		case (c == '+' || c == '-') && i == 0:
		default:
			dots = 2
		}
	}
	if digits == 0 || dots > 1 {
		return nil, fmt.Errorf("invalid number %q at position %d", text, start)
	}
	if dots == 1 {
		return &Token{Type: TokenReal, Value: text, Pos: start}, nil
	}
	return &Token{Type: TokenInteger, Value: text, Pos: start}, nil
}

// SkipStreamEOL consumes the end-of-line marker after the stream keyword.
// CRLF, LF and a lone CR are accepted, as are blanks before them.
func (l *Lexer) SkipStreamEOL() error {
	if _, err := l.collect(func(c byte) bool { return c == ' ' || c == '\t' }); err != nil {
		return err
	}
	b, err := l.peekByte()
	if err != nil {
		return err
	}
	if b == '\r' {
		l.skip(1)
		b, err = l.peekByte()
		if err != nil {
			return nil
		}
	}
	if b == '\n' {
		l.skip(1)
	}
	return nil
}

// ReadBytes reads exactly n raw bytes.
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	data := make([]byte, n)
	got, err := io.ReadFull(l.r, data)
	l.pos += int64(got)
	if err != nil {
		return data[:got], fmt.Errorf("expected %d bytes, got %d: %w", n, got, err)
	}
	return data, nil
}

// ReadUntil returns the bytes preceding the first occurrence of marker and
// leaves the marker unread.
func (l *Lexer) ReadUntil(marker []byte) ([]byte, error) {
	var buf bytes.Buffer
	for {
		if ahead, err := l.r.Peek(len(marker)); err == nil && bytes.Equal(ahead, marker) {
			return buf.Bytes(), nil
		}
		b, err := l.next()
		if err != nil {
			return buf.Bytes(), fmt.Errorf("marker %q not found: %w", marker, err)
		}
		buf.WriteByte(b)
	}
}
