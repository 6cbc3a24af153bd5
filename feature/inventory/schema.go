package inventory

import (
	"strings"

	"cvsync/core/reconcile"
)

// Record types.
const (
	TypeDevice      reconcile.Type = "device"
	TypeCustomField reconcile.Type = "cf"
	TypePort        reconcile.Type = "port"
	TypeTag         reconcile.Type = "tag"
	TypeAssignment  reconcile.Type = "tag_assignment"
)

// Attribute names.
const (
	AttrDeviceModel = "device_model"
	AttrSerial      = "serial"
	AttrValue       = "value"
	AttrMACAddr     = "mac_addr"
	AttrEnabled     = "enabled"
	AttrMode        = "mode"
	AttrMTU         = "mtu"
	AttrPortType    = "port_type"
	AttrStatus      = "status"
)

var (
	deviceSchema = reconcile.Schema{
		Type:        TypeDevice,
		Identifiers: []string{"name"},
		Attributes:  []string{AttrDeviceModel, AttrSerial},
	}
	customFieldSchema = reconcile.Schema{
		Type:              TypeCustomField,
		Identifiers:       []string{"name", "device_name"},
		Attributes:        []string{AttrValue},
		Parent:            TypeDevice,
		ParentIdentifiers: []string{"device_name"},
	}
	portSchema = reconcile.Schema{
		Type:              TypePort,
		Identifiers:       []string{"name", "device"},
		Attributes:        []string{AttrMACAddr, AttrEnabled, AttrMode, AttrMTU, AttrPortType, AttrStatus},
		Parent:            TypeDevice,
		ParentIdentifiers: []string{"device"},
	}
	tagSchema = reconcile.Schema{
		Type:        TypeTag,
		Identifiers: []string{"label", "value"},
	}
	assignmentSchema = reconcile.Schema{
		Type:              TypeAssignment,
		Identifiers:       []string{"label", "value", "device"},
		Parent:            TypeTag,
		ParentIdentifiers: []string{"label", "value"},
	}
)

var (
	deviceModel      = reconcile.MustModel(deviceSchema, customFieldSchema)
	devicePortsModel = reconcile.MustModel(deviceSchema, customFieldSchema, portSchema)
	tagModel         = reconcile.MustModel(tagSchema, assignmentSchema)
)

// DeviceModel returns the model used by the CloudVision to Nautobot direction.
// Ports are only part of it when withPorts is set.
func DeviceModel(withPorts bool) *reconcile.Model {
	if withPorts {
		return devicePortsModel
	}
	return deviceModel
}

// TagModel returns the model used by the Nautobot to CloudVision direction.
func TagModel() *reconcile.Model {
	return tagModel
}

// GuardedDeletes lists the types whose deletion needs delete_on_sync.
func GuardedDeletes() []reconcile.Type {
	return []reconcile.Type{TypeDevice, TypePort}
}

// NewDevice builds a device record.
func NewDevice(name, deviceModel, serial string) *reconcile.Record {
	return reconcile.NewRecord(TypeDevice, map[string]string{"name": name}, reconcile.Attributes{
		AttrDeviceModel: reconcile.String(deviceModel),
		AttrSerial:      reconcile.String(serial),
	})
}

// NewCustomField builds a custom field record owned by device.
func NewCustomField(device, name string, value reconcile.Value) *reconcile.Record {
	return reconcile.NewRecord(TypeCustomField, map[string]string{"name": name, "device_name": device}, reconcile.Attributes{
		AttrValue: value,
	})
}

// NewTag builds a user tag record.
func NewTag(label, value string) *reconcile.Record {
	return reconcile.NewRecord(TypeTag, map[string]string{"label": label, "value": value}, nil)
}

// NewAssignment builds the assignment of a tag to device.
func NewAssignment(label, value, device string) *reconcile.Record {
	return reconcile.NewRecord(TypeAssignment, map[string]string{"label": label, "value": value, "device": device}, nil)
}

// DeviceKey returns the key of the named device.
func DeviceKey(name string) reconcile.Key {
	k, _ := deviceSchema.KeyOf(map[string]string{"name": name})
	return k
}

// TagKey returns the key of a tag.
func TagKey(label, value string) reconcile.Key {
	k, _ := tagSchema.KeyOf(map[string]string{"label": label, "value": value})
	return k
}

// AssignmentKey returns the key of the assignment of a tag to device.
func AssignmentKey(label, value, device string) reconcile.Key {
	k, _ := assignmentSchema.KeyOf(map[string]string{"label": label, "value": value, "device": device})
	return k
}

// OwnedBy reports whether a custom field or port key belongs to device.
func OwnedBy(key reconcile.Key, device string) bool {
	return strings.HasSuffix(string(key), reconcile.KeySeparator+reconcile.KeyPart(device))
}

// PortKey returns the key of the named interface of device.
func PortKey(name, device string) reconcile.Key {
	k, _ := portSchema.KeyOf(map[string]string{"name": name, "device": device})
	return k
}
