// Package source resolves the network-source argument of the CLI into
// something that can load a CX document.
//
// Two kinds of source exist:
//
//   - [File]: a CX file on the local filesystem
//   - [NDEx]: a network stored on an NDEx server, addressed by UUID
//
// [Resolve] picks between them: an existing regular file wins, then a UUID,
// and anything else is rejected without touching the network.
package source
