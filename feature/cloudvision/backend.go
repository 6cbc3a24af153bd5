package cloudvision

import (
	"context"
	"fmt"
	gosync "sync"

	"cvsync/core/reconcile"
	"cvsync/feature/inventory"

	"go.uber.org/zap"
)

// TagBackend writes user tags and tag assignments to CloudVision.
type TagBackend struct {
	api    API
	logger *zap.Logger

	once    gosync.Once
	devices map[string]Device
	err     error
}

// NewTagBackend creates the backend for one session.
func NewTagBackend(api API, logger *zap.Logger) *TagBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TagBackend{api: api, logger: logger}
}

// Name implements reconcile.Backend.
func (b *TagBackend) Name() string { return "cloudvision" }

// Ops implements reconcile.Backend.
func (b *TagBackend) Ops(t reconcile.Type) (reconcile.RecordOps, bool) {
	switch t {
	case inventory.TypeTag:
		return tagOps{b}, true
	case inventory.TypeAssignment:
		return assignmentOps{b}, true
	}
	return nil, false
}

// device resolves a hostname to a CloudVision device. The inventory is read
// once per backend.
func (b *TagBackend) device(ctx context.Context, hostname string) (Device, bool, error) {
	b.once.Do(func() {
		list, err := b.api.Devices(ctx)
		if err != nil {
			b.err = fmt.Errorf("failed to list devices: %w", err)
			return
		}
		b.devices = make(map[string]Device, len(list))
		for _, d := range list {
			if _, dup := b.devices[d.Hostname]; d.Hostname != "" && !dup {
				b.devices[d.Hostname] = d
			}
		}
	})
	if b.err != nil {
		return Device{}, false, b.err
	}
	d, ok := b.devices[hostname]
	return d, ok, nil
}

type tagOps struct{ b *TagBackend }

func (o tagOps) Create(ctx context.Context, _ *reconcile.Container, rec *reconcile.Record) (*reconcile.Record, error) {
	if err := o.b.api.CreateTag(ctx, TagKey{Label: rec.ID("label"), Value: rec.ID("value")}); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update is a no-op: tags carry no attributes.
func (o tagOps) Update(_ context.Context, _ *reconcile.Container, rec *reconcile.Record, _ reconcile.Attributes) (*reconcile.Record, error) {
	return rec, nil
}

func (o tagOps) Delete(ctx context.Context, _ *reconcile.Container, rec *reconcile.Record) (*reconcile.Record, error) {
	if err := o.b.api.DeleteTag(ctx, TagKey{Label: rec.ID("label"), Value: rec.ID("value")}); err != nil {
		return nil, err
	}
	return rec, nil
}

type assignmentOps struct{ b *TagBackend }

func (o assignmentOps) key(ctx context.Context, rec *reconcile.Record, requireActive bool) (AssignmentKey, error) {
	hostname := rec.ID("device")
	d, ok, err := o.b.device(ctx, hostname)
	if err != nil {
		return AssignmentKey{}, err
	}
	if !ok {
		o.b.logger.Warn("Device not found in CloudVision, assignment skipped", zap.String("device", hostname))
		return AssignmentKey{}, fmt.Errorf("%w: device %s is not in CloudVision", reconcile.ErrSkipped, hostname)
	}
	if requireActive && !d.Active() {
		o.b.logger.Warn("Device inactive in CloudVision, assignment skipped", zap.String("device", hostname))
		return AssignmentKey{}, fmt.Errorf("%w: device %s is not streaming", reconcile.ErrSkipped, hostname)
	}
	return AssignmentKey{Label: rec.ID("label"), Value: rec.ID("value"), DeviceID: d.Key.DeviceID}, nil
}

func (o assignmentOps) Create(ctx context.Context, _ *reconcile.Container, rec *reconcile.Record) (*reconcile.Record, error) {
	key, err := o.key(ctx, rec, true)
	if err != nil {
		return nil, err
	}
	if err := o.b.api.AssignTag(ctx, key); err != nil {
		return nil, err
	}
	rec.Ref = key.DeviceID
	return rec, nil
}

func (o assignmentOps) Update(_ context.Context, _ *reconcile.Container, rec *reconcile.Record, _ reconcile.Attributes) (*reconcile.Record, error) {
	return rec, nil
}

func (o assignmentOps) Delete(ctx context.Context, _ *reconcile.Container, rec *reconcile.Record) (*reconcile.Record, error) {
	key := AssignmentKey{Label: rec.ID("label"), Value: rec.ID("value")}
	if rec.Ref != "" {
		key.DeviceID = rec.Ref
	} else {
		resolved, err := o.key(ctx, rec, false)
		if err != nil {
			return nil, err
		}
		key = resolved
	}
	if err := o.b.api.UnassignTag(ctx, key); err != nil {
		return nil, err
	}
	return rec, nil
}
