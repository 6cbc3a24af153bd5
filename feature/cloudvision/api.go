package cloudvision

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// API is the CloudVision surface used by the sync. *Session implements it.
type API interface {
	Devices(ctx context.Context) ([]Device, error)
	Tags(ctx context.Context) ([]Tag, error)
	Assignments(ctx context.Context) ([]Assignment, error)
	Interfaces(ctx context.Context) ([]Interface, error)
	CreateTag(ctx context.Context, key TagKey) error
	DeleteTag(ctx context.Context, key TagKey) error
	AssignTag(ctx context.Context, key AssignmentKey) error
	UnassignTag(ctx context.Context, key AssignmentKey) error
	Close() error
}

var _ API = (*Session)(nil)

// Devices lists the device inventory.
func (s *Session) Devices(ctx context.Context) ([]Device, error) {
	return getAll[Device](ctx, s, "inventory/v1/Device")
}

// Tags lists every device tag, system and user.
func (s *Session) Tags(ctx context.Context) ([]Tag, error) {
	return getAll[Tag](ctx, s, "tag/v1/DeviceTag")
}

// Assignments lists every tag assignment.
func (s *Session) Assignments(ctx context.Context) ([]Assignment, error) {
	return getAll[Assignment](ctx, s, "tag/v1/DeviceTagAssignment")
}

// Interfaces lists the interfaces of every device.
func (s *Session) Interfaces(ctx context.Context) ([]Interface, error) {
	return getAll[Interface](ctx, s, "inventory/v1/Interface")
}

// CreateTag creates a user tag.
func (s *Session) CreateTag(ctx context.Context, key TagKey) error {
	_, err := s.call(ctx, http.MethodPost, resourcePrefix+"/tag/v1/DeviceTagConfig", nil, map[string]any{"key": key})
	if err != nil {
		return fmt.Errorf("create tag %s:%s: %w", key.Label, key.Value, err)
	}
	return nil
}

// DeleteTag deletes a user tag. CloudVision refuses while it is assigned.
func (s *Session) DeleteTag(ctx context.Context, key TagKey) error {
	q := url.Values{"key.label": {key.Label}, "key.value": {key.Value}}
	if _, err := s.call(ctx, http.MethodDelete, resourcePrefix+"/tag/v1/DeviceTagConfig", q, nil); err != nil {
		return fmt.Errorf("delete tag %s:%s: %w", key.Label, key.Value, err)
	}
	return nil
}

// AssignTag assigns a user tag to a device.
func (s *Session) AssignTag(ctx context.Context, key AssignmentKey) error {
	_, err := s.call(ctx, http.MethodPost, resourcePrefix+"/tag/v1/DeviceTagAssignmentConfig", nil, map[string]any{"key": key})
	if err != nil {
		return fmt.Errorf("assign tag %s:%s to %s: %w", key.Label, key.Value, key.DeviceID, err)
	}
	return nil
}

// UnassignTag removes a user tag from a device.
func (s *Session) UnassignTag(ctx context.Context, key AssignmentKey) error {
	q := url.Values{"key.label": {key.Label}, "key.value": {key.Value}, "key.deviceId": {key.DeviceID}}
	if _, err := s.call(ctx, http.MethodDelete, resourcePrefix+"/tag/v1/DeviceTagAssignmentConfig", q, nil); err != nil {
		return fmt.Errorf("unassign tag %s:%s from %s: %w", key.Label, key.Value, key.DeviceID, err)
	}
	return nil
}
