// Package cx reads and writes CX documents, the JSON network exchange format
// used by NDEx.
//
// A CX document is a JSON array of aspect fragments. Each fragment is an
// object with a single key, the aspect name, mapped to an array of elements:
//
//	[
//	  {"numberVerification": [{"longNumber": 281474976710655}]},
//	  {"nodes": [{"@id": 0, "n": "TP53"}, {"@id": 1, "n": "MDM2"}]},
//	  {"edges": [{"@id": 2, "s": 0, "t": 1, "i": "interacts-with"}]},
//	  {"networkAttributes": [{"n": "name", "v": "p53 pathway"}]}
//	]
//
// [Document] keeps every fragment verbatim and in order, so a document that is
// read and written again is semantically identical to the input. Aspects this
// package does not know (layouts, styles, provenance) pass through untouched.
// Typed accessors decode the core aspects on demand.
package cx
