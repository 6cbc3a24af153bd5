package sync

import (
	"context"
	"fmt"
	"time"

	"cvsync/core/logger"
	"cvsync/core/reconcile"
	"cvsync/feature/cloudvision"
	"cvsync/feature/inventory"
	"cvsync/feature/nautobot"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Dialer opens one CloudVision session.
type Dialer func(ctx context.Context) (cloudvision.API, error)

// Sink receives every finished report.
type Sink interface {
	Name() string
	Handle(ctx context.Context, report *Report) error
}

// RunOptions controls one run.
type RunOptions struct {
	// DryRun computes and reports the diff without writing.
	DryRun bool
	// Confirm is asked before changes are applied. Declining turns the run
	// into a report-only run.
	Confirm func(ctx context.Context, diff *reconcile.Diff) bool
}

// Service runs syncs between CloudVision and Nautobot.
type Service struct {
	cfg    Config
	nb     nautobot.Config
	cv     cloudvision.Config
	db     *gorm.DB
	dial   Dialer
	sinks  []Sink
	logger *zap.Logger
	group  singleflight.Group
}

// NewService creates a sync service.
func NewService(cfg Config, cv cloudvision.Config, nb nautobot.Config, db *gorm.DB, dial Dialer, logger *zap.Logger, sinks ...Sink) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, cv: cv, nb: nb, db: db, dial: dial, sinks: sinks, logger: logger}
}

// DialCloudVision returns a Dialer connecting with cfg.
func DialCloudVision(cfg cloudvision.Config, logger *zap.Logger) Dialer {
	return func(ctx context.Context) (cloudvision.API, error) {
		session, err := cloudvision.Connect(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

// pipeline binds the adapters and backend of one direction.
type pipeline struct {
	model    *reconcile.Model
	desired  reconcile.Adapter
	current  reconcile.Adapter
	backend  reconcile.Backend
	resolver map[string]reconcile.ObjectResolver
	target   string
}

func (s *Service) pipeline(dir Direction, api cloudvision.API, store *nautobot.Store, log *zap.Logger) pipeline {
	policy := s.cfg.TagPolicy()
	resolvers := map[string]reconcile.ObjectResolver{
		SideCloudVision: cloudvision.NewResolver(api),
		SideNautobot:    nautobot.NewResolver(store),
	}
	if dir == ToCloudVision {
		return pipeline{
			model:    inventory.TagModel(),
			desired:  nautobot.NewTagAdapter(store, log),
			current:  cloudvision.NewTagAdapter(api, log),
			backend:  cloudvision.NewTagBackend(api, log),
			resolver: resolvers,
			target:   SideCloudVision,
		}
	}
	return pipeline{
		model: inventory.DeviceModel(s.cfg.ImportPorts),
		desired: cloudvision.NewDeviceAdapter(api, cloudvision.DeviceOptions{
			Policy:       policy,
			ImportActive: s.cv.ImportActive,
			ImportPorts:  s.cfg.ImportPorts,
		}, log),
		current: nautobot.NewDeviceAdapter(store, nautobot.DeviceOptions{
			Policy:      policy,
			ImportPorts: s.cfg.ImportPorts,
		}, log),
		backend:  nautobot.NewDeviceBackend(store, policy, log),
		resolver: resolvers,
		target:   SideNautobot,
	}
}

// Run performs one sync. Concurrent runs of the same direction and mode share
// one execution and its report. Load failures return a *reconcile.LoadError
// and nothing is applied; failures of individual changes are in the report.
func (s *Service) Run(ctx context.Context, dir Direction, opts RunOptions) (*Report, error) {
	if _, err := ParseDirection(string(dir)); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/%t", dir, opts.DryRun)
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.run(ctx, dir, opts)
	})
	if shared {
		s.logger.Info("Joined running sync", zap.String("direction", string(dir)))
	}
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

func (s *Service) run(ctx context.Context, dir Direction, opts RunOptions) (*Report, error) {
	report := &Report{
		ID:        uuid.NewString(),
		Direction: dir,
		DryRun:    opts.DryRun,
		StartedAt: time.Now().UTC(),
	}
	log := logger.ForRun(s.logger, string(dir), report.ID, opts.DryRun)

	if s.cfg.RunTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.RunTimeoutSeconds)*time.Second)
		defer cancel()
	}

	log.Info("Step 1: Connecting to CloudVision...")
	api, err := s.dial(ctx)
	if err != nil {
		return nil, reconcile.NewLoadError(SideCloudVision, err)
	}
	defer func() {
		if err := api.Close(); err != nil {
			log.Warn("Failed to close CloudVision session", zap.Error(err))
		}
	}()

	store := nautobot.NewStore(s.db, s.nb, log)
	p := s.pipeline(dir, api, store, log)

	log.Info("Step 2: Loading sources...",
		zap.String("authoritative", p.desired.Name()),
		zap.String("target", p.current.Name()),
	)
	desired := reconcile.NewContainer(p.desired.Name(), p.model, log)
	current := reconcile.NewContainer(p.current.Name(), p.model, log)
	// Authoritative side first; the target is only read once the source is complete.
	for _, load := range []struct {
		adapter reconcile.Adapter
		into    *reconcile.Container
	}{{p.desired, desired}, {p.current, current}} {
		if err := load.adapter.Load(ctx, load.into); err != nil {
			err = reconcile.NewLoadError(load.adapter.Name(), err)
			log.Error("Load failed, nothing applied", zap.Error(err))
			return nil, err
		}
	}
	log.Info("Sources loaded", zap.Int("authoritative_records", desired.Len()), zap.Int("target_records", current.Len()))

	log.Info("Step 3: Computing diff...")
	diff, err := reconcile.Compute(current, desired)
	if err != nil {
		return nil, err
	}
	log.Info("Diff computed", zap.Int("changes", len(diff.Changes)))

	dryRun := opts.DryRun
	if !dryRun && diff.HasChanges() && opts.Confirm != nil && !opts.Confirm(ctx, diff) {
		log.Info("Changes declined, reporting only")
		dryRun = true
		report.Cancelled = true
	}

	log.Info("Step 4: Applying changes...")
	report.Summary = reconcile.NewDriver(log).Apply(ctx, diff, current, p.backend, reconcile.ApplyOptions{
		DryRun:         dryRun,
		DeleteOnSync:   s.cfg.DeleteOnSync,
		GuardedDeletes: inventory.GuardedDeletes(),
	})
	report.Objects = s.resolveFailures(ctx, report.Summary, p, log)
	report.FinishedAt = time.Now().UTC()

	t := report.Summary.Totals
	log.Info("Sync finished",
		zap.Int("applied", t.Applied),
		zap.Int("skipped", t.Skipped),
		zap.Int("failed", t.Failed),
		zap.Int("pending", t.Pending),
		zap.Duration("took", report.Duration()),
	)

	if err := s.publish(ctx, report); err != nil {
		log.Warn("Report sinks failed", zap.Error(err))
	}
	return report, nil
}

// resolveFailures looks up the object behind each failed change: the target
// object for updates and deletes, the authoritative one for creates.
func (s *Service) resolveFailures(ctx context.Context, summary *reconcile.Summary, p pipeline, log *zap.Logger) []ObjectRef {
	source := SideCloudVision
	if p.target == SideCloudVision {
		source = SideNautobot
	}

	var out []ObjectRef
	for _, res := range summary.Failures() {
		side := p.target
		if res.Change.Op == reconcile.OpCreate {
			side = source
		}
		ref := ObjectRef{Type: res.Change.Type, Key: res.Change.Key, Side: side}
		obj, err := p.resolver[side].Lookup(ctx, res.Change.Type, res.Change.Key)
		if err != nil {
			ref.Error = err.Error()
			log.Debug("Unable to resolve failed object", zap.String("key", string(res.Change.Key)), zap.Error(err))
		} else {
			ref.Object = obj
		}
		out = append(out, ref)
	}
	return out
}

// publish hands the report to every sink and collects their errors.
func (s *Service) publish(ctx context.Context, report *Report) error {
	var result *multierror.Error
	for _, sink := range s.sinks {
		if err := sink.Handle(ctx, report); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return result.ErrorOrNil()
}

// Lookup resolves one record identity on side, opening a CloudVision session
// when needed.
func (s *Service) Lookup(ctx context.Context, side string, t reconcile.Type, key reconcile.Key) (any, error) {
	switch side {
	case SideNautobot:
		return nautobot.NewResolver(nautobot.NewStore(s.db, s.nb, s.logger)).Lookup(ctx, t, key)
	case SideCloudVision:
		api, err := s.dial(ctx)
		if err != nil {
			return nil, reconcile.NewLoadError(SideCloudVision, err)
		}
		defer api.Close()
		return cloudvision.NewResolver(api).Lookup(ctx, t, key)
	}
	return nil, fmt.Errorf("unknown side %q", side)
}
