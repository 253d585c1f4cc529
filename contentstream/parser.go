package contentstream

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/tsawler/pdfreveal/core"
)

// Parser turns content stream bytes into operations. Operand syntax is
// the same as in the file body, so tokens come from core.Lexer; only
// inline image data is scanned here.
type Parser struct {
	data []byte
	base int64 // offset of lex within data
	lex  *core.Lexer
}

// NewParser returns a parser over data.
func NewParser(data []byte) *Parser {
	p := &Parser{data: data}
	p.seek(0)
	return p
}

// Decode is shorthand for NewParser(data).Parse().
func Decode(data []byte) ([]Operation, error) {
	return NewParser(data).Parse()
}

func (p *Parser) seek(offset int64) {
	p.base = offset
	p.lex = core.NewLexer(bytes.NewReader(p.data[offset:]))
}

func fail(offset int64, format string, args ...any) error {
	return &core.DecodeError{Page: -1, Offset: offset, Err: fmt.Errorf(format, args...)}
}

// next returns the next token that is not a comment, with Pos relative to
// the start of the stream.
func (p *Parser) next() (*core.Token, error) {
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, &core.DecodeError{Page: -1, Offset: p.base + p.lex.TokenStart(), Err: err}
		}
		tok.Pos += p.base
		if tok.Type != core.TokenComment {
			return tok, nil
		}
	}
}

// Parse returns every operation in stream order. Failures are
// *core.DecodeError values carrying the byte offset of the bad token.
// Operands at the end of the stream with no operator are dropped.
func (p *Parser) Parse() ([]Operation, error) {
	var ops []Operation
	var operands []core.Object
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}

		switch tok.Type {
		case core.TokenEOF:
			return ops, nil
		case core.TokenKeyword, core.TokenIndirectRef:
			word := string(tok.Value)
			if v, ok := keywordOperand(word); ok {
				operands = append(operands, v)
				continue
			}
			op := Operation{Operator: word, Operands: operands}
			if word == "BI" {
				if op, err = p.inlineImage(tok.Pos); err != nil {
					return nil, err
				}
			}
			ops = append(ops, op)
			operands = nil
		default:
			v, err := p.operand(tok)
			if err != nil {
				return nil, err
			}
			operands = append(operands, v)
		}
	}
}

func keywordOperand(word string) (core.Object, bool) {
	switch word {
	case "true":
		return core.Bool(true), true
	case "false":
		return core.Bool(false), true
	case "null":
		return core.Null{}, true
	}
	return nil, false
}

// operand builds the object that starts with tok.
func (p *Parser) operand(tok *core.Token) (core.Object, error) {
	switch tok.Type {
	case core.TokenInteger:
		n, err := strconv.ParseInt(string(tok.Value), 10, 64)
		if err != nil {
			return nil, fail(tok.Pos, "invalid number %q", tok.Value)
		}
		return core.Int(n), nil
	case core.TokenReal:
		f, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, fail(tok.Pos, "invalid number %q", tok.Value)
		}
		return core.Real(f), nil
	case core.TokenString:
		return core.String(tok.Value), nil
	case core.TokenHexString:
		b, err := core.DecodeHexString(tok.Value)
		if err != nil {
			return nil, fail(tok.Pos, "%w", err)
		}
		return core.String(b), nil
	case core.TokenName:
		return core.Name(tok.Value), nil
	case core.TokenArrayStart:
		return p.array(tok.Pos)
	case core.TokenDictStart:
		return p.dict(tok.Pos, core.TokenDictEnd, "dictionary")
	case core.TokenKeyword, core.TokenIndirectRef:
		if v, ok := keywordOperand(string(tok.Value)); ok {
			return v, nil
		}
		return nil, fail(tok.Pos, "operator %q inside an operand", tok.Value)
	}
	return nil, fail(tok.Pos, "unexpected %q", tok.Value)
}

func (p *Parser) array(start int64) (core.Object, error) {
	arr := core.Array{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case core.TokenEOF:
			return nil, fail(start, "unclosed array")
		case core.TokenArrayEnd:
			return arr, nil
		}
		v, err := p.operand(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

// dict reads /Key value pairs up to a token of type end. Inline image
// dictionaries end at the ID keyword, which is passed as TokenKeyword.
func (p *Parser) dict(start int64, end core.TokenType, what string) (core.Dict, error) {
	d := core.Dict{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.Type == core.TokenEOF:
			return nil, fail(start, "unclosed %s", what)
		case tok.Type == end && (end != core.TokenKeyword || string(tok.Value) == "ID"):
			return d, nil
		case tok.Type != core.TokenName:
			return nil, fail(tok.Pos, "%s key must be a name, found %q", what, tok.Value)
		}

		key := string(tok.Value)
		vtok, err := p.next()
		if err != nil {
			return nil, err
		}
		if vtok.Type == core.TokenEOF {
			return nil, fail(start, "unclosed %s", what)
		}
		if d[key], err = p.operand(vtok); err != nil {
			return nil, err
		}
	}
}

// inlineImage reads "dict ID data EI" after a BI keyword at start.
func (p *Parser) inlineImage(start int64) (Operation, error) {
	dict, err := p.dict(start, core.TokenKeyword, "inline image dictionary")
	if err != nil {
		return Operation{}, err
	}

	pos := int(p.base + p.lex.Offset())
	if pos < len(p.data) && isWhitespace(p.data[pos]) {
		pos++
	}
	end := findImageEnd(p.data, pos, dict)
	if end < 0 {
		return Operation{}, fail(start, "inline image without EI")
	}
	p.seek(int64(end + len("EI")))

	data := bytes.TrimRight(p.data[pos:end], "\r\n \t")
	return Operation{Operator: "BI", Operands: []core.Object{dict}, ImageData: data}, nil
}

// findImageEnd returns the index of the EI closing image data that starts
// at pos. A declared /L or /Length is trusted when it lands on EI;
// otherwise the first EI with whitespace before it and a delimiter or
// whitespace after it wins.
func findImageEnd(data []byte, pos int, dict core.Dict) int {
	for _, key := range []string{"L", "Length"} {
		n, ok := core.ToInt(dict[key])
		if !ok || n < 0 || pos+int(n) > len(data) {
			continue
		}
		i := pos + int(n)
		for i < len(data) && isWhitespace(data[i]) {
			i++
		}
		if bytes.HasPrefix(data[i:], []byte("EI")) {
			return i
		}
	}

	for i := pos; i+1 < len(data); i++ {
		if data[i] != 'E' || data[i+1] != 'I' {
			continue
		}
		if i > pos && !isWhitespace(data[i-1]) {
			continue
		}
		if i+2 < len(data) && !isWhitespace(data[i+2]) && !isDelimiter(data[i+2]) {
			continue
		}
		return i
	}
	return -1
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	return bytes.IndexByte([]byte("()<>[]{}/%"), c) >= 0
}

func isRegular(c byte) bool {
	return !isWhitespace(c) && !isDelimiter(c)
}
