package core

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ReferenceResolver looks up indirect objects while parsing, which is only
// needed for streams whose /Length is an indirect reference.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser builds Objects from the token stream of a Lexer. It keeps one
// token of lookahead, which is enough to tell "1 0 R" from two integers.
type Parser struct {
	lex      *Lexer
	tok      *Token
	ahead    *Token
	resolver ReferenceResolver
}

// NewParser returns a Parser reading from r.
func NewParser(r io.Reader) *Parser {
	p := &Parser{lex: NewLexer(r)}
	p.shift()
	p.shift()
	return p
}

// SetReferenceResolver installs the resolver used for indirect stream lengths.
func (p *Parser) SetReferenceResolver(r ReferenceResolver) {
	p.resolver = r
}

// shift moves the lookahead into the current slot. Lexing stops after the
// stream keyword since the bytes that follow are not tokens.
func (p *Parser) shift() error {
	p.tok = p.ahead
	p.ahead = nil
	if p.tok.is(TokenKeyword, "stream") {
		return nil
	}
	next, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.ahead = next
	return nil
}

func (p *Parser) skipComments() error {
	for p.tok != nil && p.tok.Type == TokenComment {
		if err := p.shift(); err != nil {
			return err
		}
	}
	return nil
}

// ParseObject parses the next direct object or indirect reference.
func (p *Parser) ParseObject() (Object, error) {
	if err := p.skipComments(); err != nil {
		return nil, err
	}
	t := p.tok
	if t == nil {
		return nil, errors.New("unexpected end of input")
	}

	var obj Object
	switch t.Type {
	case TokenEOF:
		return nil, io.EOF
	case TokenArrayStart:
		return p.parseArray()
	case TokenDictStart:
		return p.parseDict()
	case TokenInteger:
		return p.parseInteger()
	case TokenKeyword:
		switch string(t.Value) {
		case "null":
			obj = Null{}
		case "true", "false":
			obj = Bool(t.Value[0] == 't')
		default:
			return nil, fmt.Errorf("unexpected keyword: %s", t.Value)
		}
	case TokenReal:
		f, err := strconv.ParseFloat(string(t.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real number: %w", err)
		}
		obj = Real(f)
	case TokenString:
		obj = String(t.Value)
	case TokenHexString:
		decoded, err := DecodeHexString(t.Value)
		if err != nil {
			return nil, err
		}
		obj = String(decoded)
	case TokenName:
		obj = Name(t.Value)
	default:
		return nil, fmt.Errorf("unexpected token type: %v at position %d", t.Type, t.Pos)
	}
	p.shift()
	return obj, nil
}

// parseInteger returns an Int, or an IndirectRef when the integer starts
// an "n g R" triple.
func (p *Parser) parseInteger() (Object, error) {
	n, err := strconv.ParseInt(string(p.tok.Value), 10, 64)
	if err != nil {
		// signs and digits only, so this is an overflow or a bare sign
		f, ferr := strconv.ParseFloat(string(p.tok.Value), 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid number: %s", p.tok.Value)
		}
		p.shift()
		return Real(f), nil
	}
	p.shift()

	if p.tok == nil || p.tok.Type != TokenInteger || p.ahead == nil || p.ahead.Type != TokenIndirectRef {
		return Int(n), nil
	}
	gen, err := strconv.ParseInt(string(p.tok.Value), 10, 64)
	if err != nil {
		return Int(n), nil
	}
	p.shift()
	p.shift()
	return IndirectRef{Number: int(n), Generation: int(gen)}, nil
}

// until runs parse for every element up to the closing token.
func (p *Parser) until(end TokenType, what string, parse func() error) error {
	p.shift()
	for {
		if err := p.skipComments(); err != nil {
			return err
		}
		switch {
		case p.tok == nil:
			return fmt.Errorf("unexpected end of input in %s", what)
		case p.tok.Type == end:
			p.shift()
			return nil
		case p.tok.Type == TokenEOF:
			return fmt.Errorf("unexpected EOF in %s", what)
		}
		if err := parse(); err != nil {
			return err
		}
	}
}

func (p *Parser) parseArray() (Object, error) {
	var arr Array
	err := p.until(TokenArrayEnd, "array", func() error {
		elem, err := p.ParseObject()
		if err != nil {
			return fmt.Errorf("error parsing array element: %w", err)
		}
		arr = append(arr, elem)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *Parser) parseDict() (Object, error) {
	dict := Dict{}
	err := p.until(TokenDictEnd, "dictionary", func() error {
		if p.tok.Type != TokenName {
			return fmt.Errorf("expected name for dictionary key, got %v", p.tok.Type)
		}
		key := string(p.tok.Value)
		p.shift()
		value, err := p.ParseObject()
		if err != nil {
			return fmt.Errorf("error parsing dictionary value for key '%s': %w", key, err)
		}
		dict[key] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dict, nil
}

// DecodeHexString converts the digits of a hex string to bytes. An odd
// final digit is treated as if followed by 0.
func DecodeHexString(digits []byte) ([]byte, error) {
	if len(digits)%2 == 1 {
		digits = append(digits[:len(digits):len(digits)], '0')
	}
	out := make([]byte, hex.DecodedLen(len(digits)))
	if _, err := hex.Decode(out, digits); err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	return out, nil
}

func (p *Parser) expectInt(what string) (int, error) {
	if p.tok == nil || p.tok.Type != TokenInteger {
		return 0, fmt.Errorf("expected %s number, got %v", what, p.tok)
	}
	n, err := strconv.Atoi(string(p.tok.Value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s number: %w", what, err)
	}
	p.shift()
	return n, nil
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.tok.is(TokenKeyword, kw) {
		return fmt.Errorf("expected '%s' keyword, got %v", kw, p.tok)
	}
	p.shift()
	return nil
}

// ParseIndirectObject parses "n g obj ... endobj", including a stream body
// when the value is followed by the stream keyword.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	if err := p.skipComments(); err != nil {
		return nil, err
	}
	num, err := p.expectInt("object")
	if err != nil {
		return nil, err
	}
	gen, err := p.expectInt("generation")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("obj"); err != nil {
		return nil, err
	}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("error parsing indirect object value: %w", err)
	}
	if p.tok.is(TokenKeyword, "stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, errors.New("stream must follow a dictionary")
		}
		if obj, err = p.parseStream(dict); err != nil {
			return nil, fmt.Errorf("error parsing stream: %w", err)
		}
	}
	if err := p.expectKeyword("endobj"); err != nil {
		return nil, err
	}
	return &IndirectObject{Ref: IndirectRef{Number: num, Generation: gen}, Object: obj}, nil
}

// parseStream reads the body after the stream keyword. The body is /Length
// bytes long; when the length is missing or unresolvable the body runs to
// the endstream keyword and /Length is corrected.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	length, lengthErr := p.streamLength(dict)

	if err := p.lex.SkipStreamEOL(); err != nil {
		return nil, fmt.Errorf("failed to skip EOL after stream keyword: %w", err)
	}

	var data []byte
	if lengthErr == nil {
		raw, err := p.lex.ReadBytes(length)
		if err != nil {
			return nil, fmt.Errorf("failed to read stream data: %w", err)
		}
		data = raw
	} else {
		raw, err := p.lex.ReadUntil([]byte("endstream"))
		if err != nil {
			return nil, fmt.Errorf("%v; recovery failed: %w", lengthErr, err)
		}
		data = bytes.TrimRight(raw, "\r\n")
		dict = dict.Clone()
		dict.Set("Length", Int(len(data)))
	}

	end, err := p.lex.NextToken()
	if err != nil {
		return nil, fmt.Errorf("failed to read token after stream data: %w", err)
	}
	if !end.is(TokenKeyword, "endstream") {
		return nil, fmt.Errorf("expected 'endstream' keyword, got %v (%s)", end.Type, end.Value)
	}

	p.tok, p.ahead = nil, nil
	p.shift()
	p.shift()
	return &Stream{Dict: dict, Data: data}, nil
}

func (p *Parser) streamLength(dict Dict) (int, error) {
	var length int64
	switch v := dict.Get("Length").(type) {
	case nil:
		return 0, errors.New("stream dictionary missing 'Length' entry")
	case Int:
		length = int64(v)
	case IndirectRef:
		if p.resolver == nil {
			return 0, fmt.Errorf("indirect stream length %s needs a reference resolver", v)
		}
		resolved, err := p.resolver.ResolveReference(v)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve stream length reference: %w", err)
		}
		n, ok := ToInt(resolved)
		if !ok {
			return 0, fmt.Errorf("stream length reference resolved to %T, expected Int", resolved)
		}
		length = n
	default:
		return 0, fmt.Errorf("invalid type for stream length: %T", v)
	}
	if length < 0 {
		return 0, fmt.Errorf("invalid stream length: %d", length)
	}
	return int(length), nil
}
