// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key or bearer token), with public path
//     prefixes such as the Swagger UI
//   - rayid: assigns or propagates a request id (RayID), stores it in the
//     context locals read by logger.WithRayID and echoes it in the response
//
// Register rayid first so every later log line carries the id.
package middleware
