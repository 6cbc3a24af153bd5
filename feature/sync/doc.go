// Package sync runs reconciliations between CloudVision and Nautobot.
//
// A run picks one authoritative side per direction:
//
//   - from-cloudvision: CloudVision devices, system tags and (optionally)
//     interfaces are written to Nautobot devices, arista_* custom fields and
//     interfaces.
//   - to-cloudvision: Nautobot tags and their device assignments are written
//     to CloudVision user tags.
//
// Both sides are loaded concurrently into reconcile containers, diffed, and
// the diff is applied to the target. Deletes of devices and ports only happen
// with delete_on_sync. A load failure aborts the run before anything is
// written.
//
// Finished reports go to every configured Sink: the Archive keeps them as
// JSON objects in the report bucket and the Announcer publishes a summary to
// NATS.
//
// # Endpoints
//
//   - POST /sync/{direction}?dry_run=true
//   - GET /sync/reports?direction=
//   - GET /sync/reports/{direction}/{id}
//   - GET /sync/lookup/{side}/{type}/{key}
package sync
