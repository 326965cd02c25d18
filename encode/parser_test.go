package encode

import (
	stderrors "errors"
	"testing"

	"github.com/cynecx/objc2/errors"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  Encoding
	}{
		{"c", Char},
		{"Q", ULongLong},
		{"v", Void},
		{"@", Object},
		{"@?", Block},
		{`@"NSArray"`, Encoding{Kind: KindObject, Name: "NSArray"}},
		{"#", Class},
		{":", Sel},
		{"^i", Pointer(Int)},
		{"^^c", Pointer(Pointer(Char))},
		{"Ai", Atomic(Int)},
		{"b5", BitField(5)},
		{"[16c]", Array(16, Char)},
		{"[2[3i]]", Array(2, Array(3, Int))},
		{"{CGPoint=dd}", Struct("CGPoint", Double, Double)},
		{"{CGPoint}", Struct("CGPoint")},
		{"{CGRect={CGPoint=dd}{CGSize=dd}}", Struct("CGRect",
			Struct("CGPoint", Double, Double),
			Struct("CGSize", Double, Double))},
		{"(sigval=i^v)", Union("sigval", Int, Pointer(Void))},
		{"^{CGPoint}", Pointer(Struct("CGPoint"))},
		{"{empty=}", Encoding{Kind: KindStruct, Name: "empty", Elems: []Encoding{}}},
		// Method-style qualifiers are skipped.
		{"r*", CString},
		{"Vv", Void},
	}
	for _, c := range cases {
		got, err := Parse(c.input)
		if err != nil {
			t.Errorf("Parse(%q): %v", c.input, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("Parse(%q) = %+v, want %+v", c.input, got, c.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"c", "i", "Q", "d", "B", "v", "*", "@", "@?", "#", ":", "?",
		`@"NSString"`, "^i", "^^c", "Ai", "b3", "[8c]",
		"{CGPoint=dd}", "{CGPoint}", "(sigval=i^v)",
		"{CGRect={CGPoint=dd}{CGSize=dd}}",
	}
	for _, in := range inputs {
		enc, err := Parse(in)
		if err != nil {
			t.Errorf("Parse(%q): %v", in, err)
			continue
		}
		if got := enc.String(); got != in {
			t.Errorf("Parse(%q).String() = %q", in, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",
		"z",
		"ii",    // trailing characters
		"^",     // pointer with no pointee
		"b",     // bitfield with no width
		"[c]",   // array with no length
		"[4c",   // unterminated array
		"{CGPoint=dd", // unterminated struct
		`@"NSString`,  // unterminated quoted name
	}
	for _, in := range inputs {
		_, err := Parse(in)
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
			continue
		}
		var oe *errors.Error
		if !stderrors.As(err, &oe) || oe.Kind != errors.KindInvalidEncoding {
			t.Errorf("Parse(%q) error = %v, want invalid-encoding", in, err)
		}
	}
}

func TestParseMethod(t *testing.T) {
	encs, err := ParseMethod("v24@0:8@16")
	if err != nil {
		t.Fatalf("ParseMethod: %v", err)
	}
	want := []Encoding{Void, Object, Sel, Object}
	if len(encs) != len(want) {
		t.Fatalf("ParseMethod returned %d encodings, want %d", len(encs), len(want))
	}
	for i := range want {
		if !encs[i].Equal(want[i]) {
			t.Fatalf("encs[%d] = %+v, want %+v", i, encs[i], want[i])
		}
	}
}

func TestParseMethodWithAggregates(t *testing.T) {
	encs, err := ParseMethod("{CGPoint=dd}16@0:8")
	if err != nil {
		t.Fatalf("ParseMethod: %v", err)
	}
	if len(encs) != 3 {
		t.Fatalf("got %d encodings, want 3", len(encs))
	}
	if !encs[0].Equal(Struct("CGPoint", Double, Double)) {
		t.Fatalf("return encoding = %+v", encs[0])
	}
}

func TestParseMethodEmpty(t *testing.T) {
	if _, err := ParseMethod(""); err == nil {
		t.Fatal("empty method encoding accepted")
	}
}
