// Package class resolves Objective-C class objects by name.
//
// Class objects are owned by the foreign runtime and are never
// reference-counted, so they are plain values here rather than handles.
// A Registry caches lookups through a Loader, which both the real
// runtime (objcrt) and the simulator (sim) implement.
//
// Binding types declare the class they represent by implementing Named:
//
//	type NSString objc2.Pointer
//
//	func (NSString) ClassName() string { return "NSString" }
//
// and resolve it with For:
//
//	cls, err := class.For[NSString](registry)
package class
