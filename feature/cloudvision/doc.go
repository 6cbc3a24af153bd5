// Package cloudvision connects the sync to Arista CloudVision.
//
// It talks to the Resource REST API of on-prem CVP or CVaaS through a
// Session, which retries transient failures and guards the service with a
// circuit breaker. Error bodies carry gRPC status codes that unwrap to the
// reconcile sentinels.
//
// # Components
//
//   - Session: Authenticated transport implementing API.
//   - DeviceAdapter: Loads devices, system tags as custom fields, and ports.
//   - TagAdapter: Loads user tags and their assignments by hostname.
//   - TagBackend: Record operations for tags and assignments.
//   - Resolver: Maps record identities back to CloudVision objects.
package cloudvision
