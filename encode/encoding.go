package encode

import (
	"fmt"
	"strings"
)

// Kind discriminates the encoding variants.
type Kind uint8

const (
	KindChar Kind = iota
	KindShort
	KindInt
	KindLong
	KindLongLong
	KindUChar
	KindUShort
	KindUInt
	KindULong
	KindULongLong
	KindFloat
	KindDouble
	KindBool
	KindVoid
	KindCString
	KindObject
	KindBlock
	KindClass
	KindSel
	KindUnknown
	KindBitField
	KindPointer
	KindAtomic
	KindArray
	KindStruct
	KindUnion
)

var kindCodes = map[Kind]string{
	KindChar:      "c",
	KindShort:     "s",
	KindInt:       "i",
	KindLong:      "l",
	KindLongLong:  "q",
	KindUChar:     "C",
	KindUShort:    "S",
	KindUInt:      "I",
	KindULong:     "L",
	KindULongLong: "Q",
	KindFloat:     "f",
	KindDouble:    "d",
	KindBool:      "B",
	KindVoid:      "v",
	KindCString:   "*",
	KindObject:    "@",
	KindBlock:     "@?",
	KindClass:     "#",
	KindSel:       ":",
	KindUnknown:   "?",
}

// Encoding describes one Objective-C type.
//
// Name is set for structs and unions. Elems holds struct/union fields,
// the array element, or the pointee for pointer and atomic encodings.
// Len is the array length or bitfield width. A struct or union with nil
// Elems is opaque: the spelling the runtime uses past the first pointer
// level, where field layout is omitted.
type Encoding struct {
	Name  string
	Elems []Encoding
	Len   int
	Kind  Kind
}

// Predeclared encodings for the types without structure.
var (
	Char      = Encoding{Kind: KindChar}
	Short     = Encoding{Kind: KindShort}
	Int       = Encoding{Kind: KindInt}
	Long      = Encoding{Kind: KindLong}
	LongLong  = Encoding{Kind: KindLongLong}
	UChar     = Encoding{Kind: KindUChar}
	UShort    = Encoding{Kind: KindUShort}
	UInt      = Encoding{Kind: KindUInt}
	ULong     = Encoding{Kind: KindULong}
	ULongLong = Encoding{Kind: KindULongLong}
	Float     = Encoding{Kind: KindFloat}
	Double    = Encoding{Kind: KindDouble}
	Bool      = Encoding{Kind: KindBool}
	Void      = Encoding{Kind: KindVoid}
	CString   = Encoding{Kind: KindCString}
	Object    = Encoding{Kind: KindObject}
	Block     = Encoding{Kind: KindBlock}
	Class     = Encoding{Kind: KindClass}
	Sel       = Encoding{Kind: KindSel}
	Unknown   = Encoding{Kind: KindUnknown}
)

// Pointer returns the encoding of a pointer to elem.
func Pointer(elem Encoding) Encoding {
	return Encoding{Kind: KindPointer, Elems: []Encoding{elem}}
}

// Atomic returns the encoding of an _Atomic-qualified elem.
func Atomic(elem Encoding) Encoding {
	return Encoding{Kind: KindAtomic, Elems: []Encoding{elem}}
}

// Array returns the encoding of a fixed-length array.
func Array(n int, elem Encoding) Encoding {
	return Encoding{Kind: KindArray, Len: n, Elems: []Encoding{elem}}
}

// BitField returns the encoding of a bitfield of the given width.
func BitField(bits int) Encoding {
	return Encoding{Kind: KindBitField, Len: bits}
}

// Struct returns the encoding of a named struct with the given fields.
// Pass no fields for the opaque spelling.
func Struct(name string, fields ...Encoding) Encoding {
	return Encoding{Kind: KindStruct, Name: name, Elems: fields}
}

// Union returns the encoding of a named union with the given fields.
func Union(name string, fields ...Encoding) Encoding {
	return Encoding{Kind: KindUnion, Name: name, Elems: fields}
}

// String renders the encoding in @encode syntax.
func (e Encoding) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e Encoding) write(b *strings.Builder) {
	if e.Kind == KindObject && e.Name != "" {
		// The runtime annotates ivar and property encodings with the
		// static class, e.g. @"NSString".
		fmt.Fprintf(b, "@%q", e.Name)
		return
	}
	if code, ok := kindCodes[e.Kind]; ok {
		b.WriteString(code)
		return
	}
	switch e.Kind {
	case KindBitField:
		fmt.Fprintf(b, "b%d", e.Len)
	case KindPointer:
		b.WriteByte('^')
		e.Elems[0].write(b)
	case KindAtomic:
		b.WriteByte('A')
		e.Elems[0].write(b)
	case KindArray:
		fmt.Fprintf(b, "[%d", e.Len)
		e.Elems[0].write(b)
		b.WriteByte(']')
	case KindStruct:
		e.writeAggregate(b, '{', '}')
	case KindUnion:
		e.writeAggregate(b, '(', ')')
	default:
		b.WriteByte('?')
	}
}

func (e Encoding) writeAggregate(b *strings.Builder, open, closing byte) {
	b.WriteByte(open)
	b.WriteString(e.Name)
	if e.Elems != nil {
		b.WriteByte('=')
		for _, f := range e.Elems {
			f.write(b)
		}
	}
	b.WriteByte(closing)
}

// Equal reports structural equality.
func (e Encoding) Equal(other Encoding) bool {
	if e.Kind != other.Kind || e.Name != other.Name || e.Len != other.Len {
		return false
	}
	if len(e.Elems) != len(other.Elems) {
		return false
	}
	if (e.Elems == nil) != (other.Elems == nil) {
		return false
	}
	for i := range e.Elems {
		if !e.Elems[i].Equal(other.Elems[i]) {
			return false
		}
	}
	return true
}

// EquivalentTo is Equal, except that a struct or union with known fields
// matches its opaque spelling of the same name. The runtime omits field
// layout past the first pointer level, so both spellings denote one
// type.
func (e Encoding) EquivalentTo(other Encoding) bool {
	if e.Kind != other.Kind {
		return false
	}
	switch e.Kind {
	case KindStruct, KindUnion:
		if e.Name != other.Name {
			return false
		}
		if e.Elems == nil || other.Elems == nil {
			return true
		}
	case KindPointer, KindAtomic:
		return e.Elems[0].EquivalentTo(other.Elems[0])
	case KindArray:
		return e.Len == other.Len && e.Elems[0].EquivalentTo(other.Elems[0])
	}
	if e.Len != other.Len || len(e.Elems) != len(other.Elems) {
		return false
	}
	for i := range e.Elems {
		if !e.Elems[i].EquivalentTo(other.Elems[i]) {
			return false
		}
	}
	return true
}
