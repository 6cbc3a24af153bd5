package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ApplyOptions controls how a diff is executed.
type ApplyOptions struct {
	// DryRun reports the diff without invoking any record operation.
	DryRun bool

	// DeleteOnSync allows deletes of GuardedDeletes types. When false those
	// deletes, and deletes of their children, end up skipped.
	DeleteOnSync bool

	// GuardedDeletes lists the types whose deletion is subject to DeleteOnSync.
	GuardedDeletes []Type
}

// Driver executes diffs against a target backend.
type Driver struct {
	logger *zap.Logger
}

// NewDriver creates a driver. A nil logger discards output.
func NewDriver(logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{logger: logger}
}

// Apply walks the diff in order and invokes the target's record operations.
// A failing change never stops the walk; the summary records every outcome.
// Successful operations are mirrored into target so that a fresh diff against
// the same desired container converges.
func (d *Driver) Apply(ctx context.Context, diff *Diff, target *Container, backend Backend, opts ApplyOptions) *Summary {
	summary := newSummary(diff, opts.DryRun)
	defer summary.finalize()

	if opts.DryRun {
		d.logger.Info("Dry-run: no changes applied", zap.Int("changes", len(diff.Changes)))
		return summary
	}

	suppressed := suppressedDeletes(diff, opts)

	for i := range summary.Results {
		res := &summary.Results[i]
		ch := res.Change
		log := d.logger.With(
			zap.String("type", string(ch.Type)),
			zap.String("key", string(ch.Key)),
			zap.String("op", string(ch.Op)),
		)

		if err := ctx.Err(); err != nil {
			res.fail(err)
			continue
		}
		if ch.Op == OpDelete && suppressed[ParentRef{Type: ch.Type, Key: ch.Key}] {
			res.State = StateSkipped
			res.Reason = "delete_on_sync disabled"
			log.Debug("Delete suppressed by policy")
			continue
		}
		ops, ok := backend.Ops(ch.Type)
		if !ok {
			res.fail(fmt.Errorf("%s has no operations for %s", backend.Name(), ch.Type))
			log.Warn("Change failed", zap.Error(res.Err))
			continue
		}

		res.State = StateApplying
		reason, err := d.applyOne(ctx, ch, target, ops)
		switch {
		case err == nil:
			res.State = StateApplied
			res.Reason = reason
			log.Info("Change applied")
		case errors.Is(err, ErrDependencyExists), errors.Is(err, ErrSkipped):
			res.State = StateSkipped
			res.Reason = err.Error()
			log.Warn("Change skipped", zap.String("reason", res.Reason))
		default:
			res.fail(err)
			log.Warn("Change failed", zap.Error(err))
		}
	}
	return summary
}

func (r *Result) fail(err error) {
	r.State = StateFailed
	r.Err = err
	r.Error = err.Error()
}

func (d *Driver) applyOne(ctx context.Context, ch Change, target *Container, ops RecordOps) (string, error) {
	switch ch.Op {
	case OpCreate:
		return d.create(ctx, ch, target, ops)
	case OpUpdate:
		rec, err := target.Lookup(ch.Type, ch.Key)
		if err != nil {
			return "", err
		}
		if _, err := ops.Update(ctx, target, rec, ch.New.Clone()); err != nil {
			return "", err
		}
		for name, v := range ch.New {
			if v.IsNull() {
				delete(rec.Attrs, name)
				continue
			}
			rec.Attrs[name] = v
		}
		return "", nil
	case OpDelete:
		rec, err := target.Lookup(ch.Type, ch.Key)
		if err != nil {
			return "", err
		}
		if _, err := ops.Delete(ctx, target, rec); err != nil {
			return "", err
		}
		return "", target.Remove(ch.Type, ch.Key)
	default:
		return "", fmt.Errorf("unknown op %q", ch.Op)
	}
}

func (d *Driver) create(ctx context.Context, ch Change, target *Container, ops RecordOps) (string, error) {
	var parent *Record
	if ch.Parent != nil {
		p, err := target.Lookup(ch.Parent.Type, ch.Parent.Key)
		if err != nil {
			return "", fmt.Errorf("parent of %s %s: %w", ch.Type, ch.Key, err)
		}
		parent = p
	}

	desired := ch.Record()
	var reason string
	created, err := ops.Create(ctx, target, desired)
	if errors.Is(err, ErrAlreadyExists) {
		reason = "already exists"
		err = nil
	}
	if err != nil {
		return "", err
	}
	if created == nil {
		created = desired
	}

	if err := target.Register(created); err != nil {
		return reason, err
	}
	if parent != nil {
		if err := target.AttachChild(parent, created); err != nil {
			return reason, err
		}
	}
	return reason, nil
}

// suppressedDeletes marks guarded deletes, and deletes of their descendants,
// when DeleteOnSync is off.
func suppressedDeletes(diff *Diff, opts ApplyOptions) map[ParentRef]bool {
	out := make(map[ParentRef]bool)
	if opts.DeleteOnSync || len(opts.GuardedDeletes) == 0 {
		return out
	}
	guarded := make(map[Type]bool, len(opts.GuardedDeletes))
	for _, t := range opts.GuardedDeletes {
		guarded[t] = true
	}

	deletes := make(map[ParentRef]Change)
	for _, ch := range diff.Changes {
		if ch.Op == OpDelete {
			deletes[ParentRef{Type: ch.Type, Key: ch.Key}] = ch
		}
	}

	var check func(ref ParentRef) bool
	check = func(ref ParentRef) bool {
		if v, done := out[ref]; done {
			return v
		}
		ch, ok := deletes[ref]
		if !ok {
			return false
		}
		v := guarded[ch.Type]
		if !v && ch.Parent != nil {
			v = check(*ch.Parent)
		}
		out[ref] = v
		return v
	}
	for ref := range deletes {
		check(ref)
	}
	return out
}
