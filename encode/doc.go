// Package encode models Objective-C type encodings.
//
// The foreign runtime describes argument and return layouts with compact
// encoding strings, the same syntax the @encode() directive produces:
//
//	@encode(int)       "i"
//	@encode(id)        "@"
//	@encode(CGPoint)   "{CGPoint=dd}"
//	@encode(int *)     "^i"
//
// An Encoding is a value describing one type; String renders it in
// @encode syntax and Parse reads it back. ParseMethod handles full
// method type strings, which concatenate encodings with the historical
// stack-offset digits the runtime still embeds ("v24@0:8@16").
//
// Equality comes in two strengths: Equal is structural, while
// EquivalentTo additionally matches a struct or union against its
// opaque spelling ("{CGPoint=dd}" vs "{CGPoint}"), which is how the
// runtime encodes the same type at different pointer depths.
package encode
