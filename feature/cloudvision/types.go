package cloudvision

// Tag creator types.
const (
	CreatorSystem = "CREATOR_TYPE_SYSTEM"
	CreatorUser   = "CREATOR_TYPE_USER"
)

// StreamingActive is the streaming status of a device that reports telemetry.
const StreamingActive = "STREAMING_STATUS_ACTIVE"

// DeviceKey identifies a device. The device id is its serial number.
type DeviceKey struct {
	DeviceID string `json:"deviceId"`
}

// Device is an inventory.v1.Device.
type Device struct {
	Key              DeviceKey `json:"key"`
	Hostname         string    `json:"hostname"`
	FQDN             string    `json:"fqdn,omitempty"`
	SoftwareVersion  string    `json:"softwareVersion,omitempty"`
	ModelName        string    `json:"modelName,omitempty"`
	HardwareRevision string    `json:"hardwareRevision,omitempty"`
	SystemMacAddress string    `json:"systemMacAddress,omitempty"`
	StreamingStatus  string    `json:"streamingStatus,omitempty"`
}

// Active reports whether the device is streaming.
func (d Device) Active() bool {
	return d.StreamingStatus == StreamingActive
}

// TagKey identifies a tag.
type TagKey struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Tag is a tag.v1.DeviceTag.
type Tag struct {
	Key         TagKey `json:"key"`
	CreatorType string `json:"creatorType,omitempty"`
}

// IsUser reports whether the tag was created by a user.
func (t Tag) IsUser() bool {
	return t.CreatorType == CreatorUser
}

// AssignmentKey identifies the assignment of a tag to a device.
type AssignmentKey struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	DeviceID string `json:"deviceId"`
}

// Tag returns the key of the assigned tag.
func (k AssignmentKey) Tag() TagKey {
	return TagKey{Label: k.Label, Value: k.Value}
}

// Assignment is a tag.v1.DeviceTagAssignment.
type Assignment struct {
	Key AssignmentKey `json:"key"`
}

// InterfaceKey identifies an interface of a device.
type InterfaceKey struct {
	DeviceID    string `json:"deviceId"`
	InterfaceID string `json:"interfaceId"`
}

// Interface is an inventory.v1.Interface.
type Interface struct {
	Key         InterfaceKey `json:"key"`
	LinkStatus  string       `json:"linkStatus,omitempty"`
	MACAddress  string       `json:"macAddress,omitempty"`
	Enabled     bool         `json:"enabled"`
	Mode        string       `json:"mode,omitempty"`
	MTU         int          `json:"mtu,omitempty"`
	Transceiver string       `json:"transceiver,omitempty"`
}
