// Package utils provides loose value conversion helpers shared by the HTTP
// handlers (query flags) and the Nautobot store (JSON custom field data and
// nullable columns).
package utils
