package encode

import (
	"strconv"
	"strings"

	"github.com/cynecx/objc2/errors"
)

// Parse reads a single encoding from s. The whole input must be
// consumed.
func Parse(s string) (Encoding, error) {
	p := parser{input: s}
	enc, err := p.encoding()
	if err != nil {
		return Encoding{}, err
	}
	if p.pos != len(s) {
		return Encoding{}, errors.InvalidEncoding(s, p.pos, "trailing characters")
	}
	return enc, nil
}

// ParseMethod reads a method type string: the return encoding followed
// by the argument encodings, each optionally suffixed with the
// historical stack-offset digits ("v24@0:8@16"). The offsets are
// skipped; they describe a calling convention nothing uses anymore.
func ParseMethod(s string) ([]Encoding, error) {
	p := parser{input: s}
	var encs []Encoding
	for p.pos < len(s) {
		enc, err := p.encoding()
		if err != nil {
			return nil, err
		}
		p.skipDigits()
		encs = append(encs, enc)
	}
	if len(encs) == 0 {
		return nil, errors.InvalidEncoding(s, 0, "empty method encoding")
	}
	return encs, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

func (p *parser) errorf(detail string) error {
	return errors.InvalidEncoding(p.input, p.pos, detail)
}

var codeKinds = map[byte]Kind{
	'c': KindChar,
	's': KindShort,
	'i': KindInt,
	'l': KindLong,
	'q': KindLongLong,
	'C': KindUChar,
	'S': KindUShort,
	'I': KindUInt,
	'L': KindULong,
	'Q': KindULongLong,
	'f': KindFloat,
	'd': KindDouble,
	'B': KindBool,
	'v': KindVoid,
	'*': KindCString,
	'#': KindClass,
	':': KindSel,
	'?': KindUnknown,
}

// Type qualifiers the runtime prepends in method and protocol
// encodings. They carry no layout information and are skipped.
const qualifiers = "rnNoORV"

func (p *parser) encoding() (Encoding, error) {
	for {
		c, ok := p.peek()
		if !ok {
			return Encoding{}, p.errorf("unexpected end of input")
		}
		if strings.IndexByte(qualifiers, c) < 0 {
			break
		}
		p.pos++
	}

	c := p.input[p.pos]
	if kind, ok := codeKinds[c]; ok {
		p.pos++
		return Encoding{Kind: kind}, nil
	}

	switch c {
	case '@':
		p.pos++
		if c, ok := p.peek(); ok {
			switch c {
			case '?':
				p.pos++
				return Encoding{Kind: KindBlock}, nil
			case '"':
				name, err := p.quoted()
				if err != nil {
					return Encoding{}, err
				}
				return Encoding{Kind: KindObject, Name: name}, nil
			}
		}
		return Encoding{Kind: KindObject}, nil

	case '^':
		p.pos++
		elem, err := p.encoding()
		if err != nil {
			return Encoding{}, err
		}
		return Pointer(elem), nil

	case 'A':
		p.pos++
		elem, err := p.encoding()
		if err != nil {
			return Encoding{}, err
		}
		return Atomic(elem), nil

	case 'b':
		p.pos++
		bits, err := p.number()
		if err != nil {
			return Encoding{}, err
		}
		return BitField(bits), nil

	case '[':
		p.pos++
		n, err := p.number()
		if err != nil {
			return Encoding{}, err
		}
		elem, err := p.encoding()
		if err != nil {
			return Encoding{}, err
		}
		if err := p.expect(']'); err != nil {
			return Encoding{}, err
		}
		return Array(n, elem), nil

	case '{':
		return p.aggregate(KindStruct, '}')

	case '(':
		return p.aggregate(KindUnion, ')')
	}

	return Encoding{}, p.errorf("unknown type code " + strconv.QuoteRune(rune(c)))
}

func (p *parser) aggregate(kind Kind, closing byte) (Encoding, error) {
	p.pos++ // opening brace
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok {
			return Encoding{}, p.errorf("unterminated aggregate encoding")
		}
		if c == '=' || c == closing {
			break
		}
		p.pos++
	}
	name := p.input[start:p.pos]
	enc := Encoding{Kind: kind, Name: name}

	if p.input[p.pos] == closing {
		// Opaque spelling without field layout.
		p.pos++
		return enc, nil
	}

	p.pos++ // '='
	enc.Elems = []Encoding{}
	for {
		c, ok := p.peek()
		if !ok {
			return Encoding{}, p.errorf("unterminated aggregate encoding")
		}
		if c == closing {
			p.pos++
			return enc, nil
		}
		field, err := p.encoding()
		if err != nil {
			return Encoding{}, err
		}
		enc.Elems = append(enc.Elems, field)
	}
}

func (p *parser) quoted() (string, error) {
	p.pos++ // opening quote
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok {
			return "", p.errorf("unterminated quoted name")
		}
		if c == '"' {
			name := p.input[start:p.pos]
			p.pos++
			return name, nil
		}
		p.pos++
	}
}

func (p *parser) number() (int, error) {
	start := p.pos
	p.skipDigits()
	if p.pos == start {
		return 0, p.errorf("expected a number")
	}
	n, err := strconv.Atoi(p.input[start:p.pos])
	if err != nil {
		return 0, p.errorf("invalid number")
	}
	return n, nil
}

func (p *parser) skipDigits() {
	for {
		c, ok := p.peek()
		if !ok || c < '0' || c > '9' {
			return
		}
		p.pos++
	}
}

func (p *parser) expect(c byte) error {
	got, ok := p.peek()
	if !ok || got != c {
		return p.errorf("expected " + strconv.QuoteRune(rune(c)))
	}
	p.pos++
	return nil
}
