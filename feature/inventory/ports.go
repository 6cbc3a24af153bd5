package inventory

import (
	"strconv"
	"strings"

	"cvsync/core/reconcile"
)

// Port is a normalized interface ready to become a record.
type Port struct {
	Name    string
	Device  string
	MACAddr string
	Enabled bool
	Mode    string
	MTU     int
	Type    string
	Status  string
}

// Port statuses as Nautobot status slugs.
const (
	PortStatusActive  = "active"
	PortStatusPlanned = "planned"
)

// Port types as Nautobot interface types.
const (
	PortTypeVirtual = "virtual"
	PortTypeLAG     = "lag"
	PortTypeOther   = "other"
	PortType1000T   = "1000base-t"
)

var transceiverTypes = map[string]string{
	"xcvr1000BaseT":   PortType1000T,
	"xcvr10GBaseT":    "10gbase-t",
	"xcvr10GBaseSr":   "10gbase-x-xfp",
	"xcvr10GBaseLr":   "10gbase-x-xfp",
	"xcvr25GBaseSr":   "25gbase-x-sfp28",
	"xcvr40GBaseSr4":  "40gbase-x-qsfpp",
	"xcvr100GBaseSr4": "100gbase-x-qsfp28",
	"xcvr100GBaseLr4": "100gbase-x-qsfp28",
}

// PortType derives the Nautobot interface type from the interface name and,
// for physical ports, the transceiver reported by CloudVision.
func PortType(name, transceiver string) string {
	switch {
	case strings.HasPrefix(name, "Management"):
		return PortType1000T
	case strings.HasPrefix(name, "Port-Channel"):
		return PortTypeLAG
	case strings.HasPrefix(name, "Vlan"),
		strings.HasPrefix(name, "Loopback"),
		strings.HasPrefix(name, "Vxlan"):
		return PortTypeVirtual
	}
	if t, ok := transceiverTypes[transceiver]; ok {
		return t
	}
	return PortTypeOther
}

// PortStatus maps a CloudVision link status onto a Nautobot status slug.
func PortStatus(linkStatus string) string {
	if linkStatus == "linkUp" {
		return PortStatusActive
	}
	return PortStatusPlanned
}

// NormalizeMAC lowercases a MAC address.
func NormalizeMAC(mac string) string {
	return strings.ToLower(strings.TrimSpace(mac))
}

// Record builds the port record. Empty optional fields are null.
func (p Port) Record() *reconcile.Record {
	attrs := reconcile.Attributes{
		AttrEnabled:  reconcile.Bool(p.Enabled),
		AttrPortType: reconcile.String(p.Type),
		AttrStatus:   reconcile.String(p.Status),
		AttrMACAddr:  optional(NormalizeMAC(p.MACAddr)),
		AttrMode:     optional(p.Mode),
		AttrMTU:      reconcile.Null,
	}
	if p.MTU > 0 {
		attrs[AttrMTU] = reconcile.String(strconv.Itoa(p.MTU))
	}
	return reconcile.NewRecord(TypePort, map[string]string{"name": p.Name, "device": p.Device}, attrs)
}

func optional(s string) reconcile.Value {
	if s == "" {
		return reconcile.Null
	}
	return reconcile.String(s)
}
