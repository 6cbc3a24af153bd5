// Package nautobot connects the sync to the Nautobot database.
//
// Rows are read and written through gorm models of the Nautobot tables
// (see the models subpackage). The Store resolves the site, role, status,
// device type and platform rows imported devices reference, creating them on
// demand, and validates every write before it reaches the database.
//
// # Components
//
//   - DeviceAdapter: Loads Arista devices, their arista_* custom fields and interfaces.
//   - TagAdapter: Loads tags and tagged devices for the CloudVision direction.
//   - DeviceBackend: Record operations for devices, custom fields and ports.
//   - Provision: First-install seeding of the manufacturer and custom fields.
//   - Resolver: Maps record identities back to rows.
package nautobot
