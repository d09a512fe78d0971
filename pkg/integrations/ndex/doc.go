// Package ndex downloads CX networks from an NDEx (Network Data Exchange)
// server.
//
// Networks are addressed by UUID and fetched from the v2 REST API:
//
//	GET {base}/v2/network/{uuid}
//
// The response body is the network's CX document. Downloads go through the
// shared [integrations.Client], so they are cached per host and UUID, retried
// on transient failures, and may carry basic-auth credentials for private
// networks.
package ndex
