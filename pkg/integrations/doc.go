// Package integrations provides HTTP clients for remote network data services.
//
// # Overview
//
// Each remote service has its own subpackage:
//
//   - [ndex]: NDEx (Network Data Exchange), the CX network repository
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality used by the service
// clients:
//   - Default headers and optional basic authentication
//   - Status mapping to [errors.Code] values (404 is NOT_FOUND, 401/403 is
//     UNAUTHORIZED, 5xx and transport failures are retryable NETWORK_ERROR)
//   - Response caching through [cache.Cache] with retry on cache misses
//
// Service clients embed *Client and add API-specific URL building and parsing.
package integrations
