// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - Auth: Validates the X-API-Key header (or api_key query parameter) to protect endpoints.
//   - RayID: Tags every incoming request with a UUID Request ID (RayID), stored in the
//     fiber locals for logger.WithRayID and echoed in the X-Ray-ID response header.
//
// These middleware components are designed to be registered globally or per-route group
// in the main application setup.
package middleware
