package sync_test

import (
	"context"
	"errors"
	"strings"
	gosync "sync"
	"testing"

	"cvsync/core/database"
	"cvsync/core/reconcile"
	"cvsync/feature/cloudvision"
	"cvsync/feature/inventory"
	"cvsync/feature/nautobot"
	"cvsync/feature/nautobot/models"
	cvsync "cvsync/feature/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeCV is an in-memory CloudVision.
type fakeCV struct {
	mu          gosync.Mutex
	devices     []cloudvision.Device
	tags        []cloudvision.Tag
	assignments []cloudvision.Assignment

	listErr   error
	assignErr error
	calls     []string
	closed    int
}

func (f *fakeCV) Devices(context.Context) ([]cloudvision.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.devices, f.listErr
}

func (f *fakeCV) Tags(context.Context) ([]cloudvision.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags, f.listErr
}

func (f *fakeCV) Assignments(context.Context) ([]cloudvision.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assignments, f.listErr
}

func (f *fakeCV) Interfaces(context.Context) ([]cloudvision.Interface, error) {
	return nil, f.listErr
}

func (f *fakeCV) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeCV) CreateTag(_ context.Context, key cloudvision.TagKey) error {
	f.record("create " + key.Label + ":" + key.Value)
	return nil
}

func (f *fakeCV) DeleteTag(_ context.Context, key cloudvision.TagKey) error {
	f.record("delete " + key.Label + ":" + key.Value)
	return nil
}

func (f *fakeCV) AssignTag(_ context.Context, key cloudvision.AssignmentKey) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	f.record("assign " + key.Label + ":" + key.Value + " " + key.DeviceID)
	return nil
}

func (f *fakeCV) UnassignTag(_ context.Context, key cloudvision.AssignmentKey) error {
	f.record("unassign " + key.Label + ":" + key.Value + " " + key.DeviceID)
	return nil
}

func (f *fakeCV) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeCV) dialer() cvsync.Dialer {
	return func(context.Context) (cloudvision.API, error) { return f, nil }
}

// leaf1 is one streaming switch with two system tags.
func leaf1() *fakeCV {
	return &fakeCV{
		devices: []cloudvision.Device{{
			Key:             cloudvision.DeviceKey{DeviceID: "SN1"},
			Hostname:        "leaf1",
			ModelName:       "DCS-7050SX3",
			StreamingStatus: cloudvision.StreamingActive,
		}},
		tags: []cloudvision.Tag{
			{Key: cloudvision.TagKey{Label: "bgp", Value: "enabled"}, CreatorType: cloudvision.CreatorSystem},
			{Key: cloudvision.TagKey{Label: "model", Value: "DCS-7050SX3"}, CreatorType: cloudvision.CreatorSystem},
		},
		assignments: []cloudvision.Assignment{
			{Key: cloudvision.AssignmentKey{Label: "bgp", Value: "enabled", DeviceID: "SN1"}},
			{Key: cloudvision.AssignmentKey{Label: "model", Value: "DCS-7050SX3", DeviceID: "SN1"}},
		},
	}
}

type recordingSink struct {
	reports []*cvsync.Report
	err     error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Handle(_ context.Context, r *cvsync.Report) error {
	s.reports = append(s.reports, r)
	return s.err
}

func syncConfig() cvsync.Config {
	return cvsync.Config{
		FieldPrefix:    "arista",
		ExcludedLabels: []string{"hostname", "serialnumber", "Container"},
		Backfill:       []string{"topology_type:-"},
		PlatformLabel:  "model",
	}
}

func nautobotConfig() nautobot.Config {
	return nautobot.Config{
		Manufacturer:   "Arista",
		Site:           "cloudvision_imported",
		Role:           "network",
		RoleColor:      "ff0000",
		Status:         "cloudvision_imported",
		StatusColor:    "ff0000",
		ImportTag:      "cloudvision_imported",
		ImportTagColor: "ff0000",
	}
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: name})
	require.NoError(t, err)
	store := nautobot.NewStore(db, nautobotConfig(), nil)
	_, err = nautobot.Provision(context.Background(), store, inventory.DefaultTagPolicy(), true, nil)
	require.NoError(t, err)
	return db
}

func newService(db *gorm.DB, cv *fakeCV, sinks ...cvsync.Sink) *cvsync.Service {
	return cvsync.NewService(syncConfig(), cloudvision.Config{}, nautobotConfig(), db, cv.dialer(), nil, sinks...)
}

func TestService_FromCloudVision(t *testing.T) {
	db := openDB(t)
	cv := leaf1()
	sink := &recordingSink{}
	svc := newService(db, cv, sink)
	ctx := context.Background()

	report, err := svc.Run(ctx, cvsync.FromCloudVision, cvsync.RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.Summary.Failures())
	assert.Equal(t, 4, report.Summary.Totals.Applied, "device plus three custom fields")
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
	assert.Equal(t, 1, cv.closed)
	require.Len(t, sink.reports, 1)
	assert.Same(t, report, sink.reports[0])

	var device models.Device
	require.NoError(t, db.Preload("Platform").Where("name = ?", "leaf1").First(&device).Error)
	assert.Equal(t, "SN1", device.Serial)
	assert.Equal(t, "enabled", device.CustomFieldData["arista_bgp"])
	assert.Equal(t, "-", device.CustomFieldData["arista_topology_type"])
	require.NotNil(t, device.Platform)
	assert.Equal(t, "DCS-7050SX3", device.Platform.Name)

	again, err := svc.Run(ctx, cvsync.FromCloudVision, cvsync.RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, again.Summary.Results, "a second run finds nothing to do")
}

func TestService_DryRun(t *testing.T) {
	db := openDB(t)
	svc := newService(db, leaf1())

	report, err := svc.Run(context.Background(), cvsync.FromCloudVision, cvsync.RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 4, report.Summary.Totals.Pending)
	assert.Zero(t, report.Summary.Totals.Applied)

	changes := report.Summary.Changes()
	require.Len(t, changes, 4)
	for _, res := range report.Summary.Results {
		assert.Equal(t, reconcile.StatePending, res.State, res.Change.Key)
	}
	assert.Equal(t, reconcile.OpCreate, changes[0].Op)
	assert.Equal(t, inventory.DeviceKey("leaf1"), changes[0].Key)

	var count int64
	db.Model(&models.Device{}).Count(&count)
	assert.Zero(t, count)
}

func TestService_ConfirmDeclined(t *testing.T) {
	db := openDB(t)
	svc := newService(db, leaf1())

	var asked int
	report, err := svc.Run(context.Background(), cvsync.FromCloudVision, cvsync.RunOptions{
		Confirm: func(_ context.Context, diff *reconcile.Diff) bool {
			asked++
			assert.Len(t, diff.Changes, 4)
			return false
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, asked)
	assert.True(t, report.Cancelled)
	assert.True(t, report.Summary.DryRun)
	assert.Zero(t, report.Summary.Totals.Applied)

	var count int64
	db.Model(&models.Device{}).Count(&count)
	assert.Zero(t, count)
}

func TestService_ToCloudVision(t *testing.T) {
	db := openDB(t)
	cv := leaf1()
	svc := newService(db, cv)
	ctx := context.Background()

	_, err := svc.Run(ctx, cvsync.FromCloudVision, cvsync.RunOptions{})
	require.NoError(t, err)

	red := &models.Tag{Name: "team:red", Slug: "team-red", Color: "ff0000"}
	require.NoError(t, db.Create(red).Error)
	var device models.Device
	require.NoError(t, db.Where("name = ?", "leaf1").First(&device).Error)
	require.NoError(t, db.Model(&device).Association("Tags").Append(red))

	report, err := svc.Run(ctx, cvsync.ToCloudVision, cvsync.RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.Summary.Failures())
	assert.Equal(t, 2, report.Summary.Totals.Applied)
	assert.Equal(t, []string{"create team:red", "assign team:red SN1"}, cv.calls)
}

func TestService_FailedChangesAreResolved(t *testing.T) {
	db := openDB(t)
	cv := leaf1()
	svc := newService(db, cv)
	ctx := context.Background()

	_, err := svc.Run(ctx, cvsync.FromCloudVision, cvsync.RunOptions{})
	require.NoError(t, err)
	red := &models.Tag{Name: "team:red", Slug: "team-red", Color: "ff0000"}
	require.NoError(t, db.Create(red).Error)
	var device models.Device
	require.NoError(t, db.Where("name = ?", "leaf1").First(&device).Error)
	require.NoError(t, db.Model(&device).Association("Tags").Append(red))

	cv.assignErr = errors.New("permission denied")
	report, err := svc.Run(ctx, cvsync.ToCloudVision, cvsync.RunOptions{})
	require.NoError(t, err, "failures of single changes do not fail the run")
	assert.Equal(t, 1, report.Summary.Totals.Failed)

	require.Len(t, report.Objects, 1)
	ref := report.Objects[0]
	assert.Equal(t, inventory.TypeAssignment, ref.Type)
	assert.Equal(t, cvsync.SideNautobot, ref.Side)
	require.IsType(t, &models.Device{}, ref.Object)
	assert.Equal(t, "leaf1", ref.Object.(*models.Device).Name)
}

func TestService_LoadFailure(t *testing.T) {
	db := openDB(t)
	cv := leaf1()
	cv.listErr = errors.New("connection reset")
	sink := &recordingSink{}
	svc := newService(db, cv, sink)

	report, err := svc.Run(context.Background(), cvsync.FromCloudVision, cvsync.RunOptions{})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, reconcile.ErrLoad)
	var loadErr *reconcile.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "cloudvision", loadErr.Source)
	assert.Empty(t, sink.reports)
	assert.Equal(t, 1, cv.closed)
}

func TestService_DialFailure(t *testing.T) {
	db := openDB(t)
	dial := func(context.Context) (cloudvision.API, error) { return nil, cloudvision.ErrAuth }
	svc := cvsync.NewService(syncConfig(), cloudvision.Config{}, nautobotConfig(), db, dial, nil)

	_, err := svc.Run(context.Background(), cvsync.ToCloudVision, cvsync.RunOptions{})
	assert.ErrorIs(t, err, reconcile.ErrLoad)
	assert.ErrorIs(t, err, cloudvision.ErrAuth)
}

func TestService_SinkFailureKeepsReport(t *testing.T) {
	db := openDB(t)
	broken := &recordingSink{err: errors.New("bucket unavailable")}
	healthy := &recordingSink{}
	svc := newService(db, leaf1(), broken, healthy)

	report, err := svc.Run(context.Background(), cvsync.FromCloudVision, cvsync.RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.NotNil(t, report)
	assert.Len(t, healthy.reports, 1, "later sinks still run")
}

func TestService_UnknownDirection(t *testing.T) {
	svc := newService(nil, leaf1())
	_, err := svc.Run(context.Background(), cvsync.Direction("sideways"), cvsync.RunOptions{})
	assert.ErrorContains(t, err, "unknown direction")
}

func TestService_Lookup(t *testing.T) {
	db := openDB(t)
	svc := newService(db, leaf1())
	ctx := context.Background()
	_, err := svc.Run(ctx, cvsync.FromCloudVision, cvsync.RunOptions{})
	require.NoError(t, err)

	obj, err := svc.Lookup(ctx, cvsync.SideNautobot, inventory.TypeDevice, "leaf1")
	require.NoError(t, err)
	assert.Equal(t, "leaf1", obj.(*models.Device).Name)

	obj, err = svc.Lookup(ctx, cvsync.SideCloudVision, inventory.TypeCustomField, "arista_bgp__leaf1")
	require.NoError(t, err)
	assert.Equal(t, "SN1", obj.(cloudvision.Device).Key.DeviceID)

	_, err = svc.Lookup(ctx, cvsync.SideNautobot, inventory.TypeDevice, "spine9")
	assert.ErrorIs(t, err, reconcile.ErrNotFound)

	_, err = svc.Lookup(ctx, "netbox", inventory.TypeDevice, "leaf1")
	assert.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	dir, err := cvsync.ParseDirection("to-cloudvision")
	require.NoError(t, err)
	assert.Equal(t, cvsync.ToCloudVision, dir)

	_, err = cvsync.ParseDirection("from-nautobot")
	assert.Error(t, err)
}

func TestConfig_TagPolicy(t *testing.T) {
	cfg := syncConfig()
	cfg.Backfill = append(cfg.Backfill, "broken")
	policy := cfg.TagPolicy()
	assert.Equal(t, map[string]string{"topology_type": "-", "broken": ""}, policy.Backfill)
	assert.Equal(t, "arista_model", policy.PlatformField())
}
