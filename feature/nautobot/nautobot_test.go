package nautobot_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cvsync/core/database"
	"cvsync/core/reconcile"
	"cvsync/feature/inventory"
	"cvsync/feature/nautobot"
	"cvsync/feature/nautobot/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func testConfig() nautobot.Config {
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

// setup opens a private in-memory database and provisions it.
func setup(t *testing.T, cfg nautobot.Config) (*gorm.DB, *nautobot.Store) {
	t.Helper()
	name := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: name})
	require.NoError(t, err)

	store := nautobot.NewStore(db, cfg, nil)
	res, err := nautobot.Provision(context.Background(), store, inventory.DefaultTagPolicy(), true, nil)
	require.NoError(t, err)
	require.Empty(t, res.Missing)
	return db, store
}

// desiredFabric is what CloudVision would load for one switch.
func desiredFabric(serial, bgp string, mtu int) *reconcile.Container {
	c := reconcile.NewContainer("cloudvision", inventory.DeviceModel(true), nil)
	sw1 := inventory.NewDevice("sw1", "DCS-7050SX3", serial)
	c.Add(sw1)
	c.AddChild(sw1, inventory.NewCustomField("sw1", "arista_bgp", reconcile.String(bgp)))
	c.AddChild(sw1, inventory.NewCustomField("sw1", "arista_mpls", reconcile.Bool(true)))
	c.AddChild(sw1, inventory.NewCustomField("sw1", "arista_model", reconcile.String("DCS-7050SX3")))
	c.AddChild(sw1, inventory.NewCustomField("sw1", "arista_topology_type", reconcile.String("-")))
	c.AddChild(sw1, inventory.Port{
		Name:    "Ethernet1",
		Device:  "sw1",
		MACAddr: "00:1C:73:AA:BB:01",
		Enabled: true,
		MTU:     mtu,
		Type:    "10gbase-x-xfp",
		Status:  inventory.PortStatusActive,
	}.Record())
	return c
}

func loadCurrent(t *testing.T, store *nautobot.Store) *reconcile.Container {
	t.Helper()
	c := reconcile.NewContainer("nautobot", inventory.DeviceModel(true), nil)
	adapter := nautobot.NewDeviceAdapter(store, nautobot.DeviceOptions{Policy: inventory.DefaultTagPolicy(), ImportPorts: true}, nil)
	require.NoError(t, adapter.Load(context.Background(), c))
	return c
}

func runSync(t *testing.T, store *nautobot.Store, desired *reconcile.Container, deleteOnSync bool) *reconcile.Summary {
	t.Helper()
	current := loadCurrent(t, store)
	diff, err := reconcile.Compute(current, desired)
	require.NoError(t, err)
	backend := nautobot.NewDeviceBackend(store, inventory.DefaultTagPolicy(), nil)
	return reconcile.NewDriver(nil).Apply(context.Background(), diff, current, backend, reconcile.ApplyOptions{
		DeleteOnSync:   deleteOnSync,
		GuardedDeletes: inventory.GuardedDeletes(),
	})
}

func assertConverged(t *testing.T, store *nautobot.Store, desired *reconcile.Container) {
	t.Helper()
	diff, err := reconcile.Compute(loadCurrent(t, store), desired)
	require.NoError(t, err)
	assert.False(t, diff.HasChanges(), "unexpected changes: %+v", diff.Changes)
}

func TestProvision(t *testing.T) {
	db, store := setup(t, testConfig())

	res, err := nautobot.Provision(context.Background(), store, inventory.DefaultTagPolicy(), false, nil)
	require.NoError(t, err)
	assert.Len(t, res.Fields, len(nautobot.DefaultFields))
	assert.Contains(t, res.Fields, "arista_topology_type")

	var fields, makers int64
	db.Model(&models.CustomField{}).Count(&fields)
	db.Model(&models.Manufacturer{}).Count(&makers)
	assert.Equal(t, int64(len(nautobot.DefaultFields)), fields, "provisioning twice creates nothing new")
	assert.Equal(t, int64(1), makers)

	var ztp models.CustomField
	require.NoError(t, db.Where("name = ?", "arista_ztp").First(&ztp).Error)
	assert.Equal(t, "boolean", ztp.Type)
}

func TestDeviceBackend_CreateConverges(t *testing.T) {
	db, store := setup(t, testConfig())
	desired := desiredFabric("SN1", "enabled", 9214)

	summary := runSync(t, store, desired, false)
	require.Empty(t, summary.Failures())
	assert.Equal(t, 6, summary.Totals.Applied)
	assertConverged(t, store, desired)

	var device models.Device
	require.NoError(t, db.Preload("DeviceType").Preload("Platform").Where("name = ?", "sw1").First(&device).Error)
	assert.Equal(t, "SN1", device.Serial)
	assert.Equal(t, "DCS-7050SX3", device.DeviceType.Model)
	require.NotNil(t, device.Platform)
	assert.Equal(t, "DCS-7050SX3", device.Platform.Name)
	assert.Equal(t, "enabled", device.CustomFieldData["arista_bgp"])
	assert.Equal(t, true, device.CustomFieldData["arista_mpls"])
	assert.NotContains(t, device.CustomFieldData, "arista_model")

	var site models.Site
	require.NoError(t, db.First(&site, "id = ?", device.SiteID).Error)
	assert.Equal(t, "cloudvision_imported", site.Name)
	var role models.DeviceRole
	require.NoError(t, db.First(&role, "id = ?", device.RoleID).Error)
	assert.Equal(t, "ff0000", role.Color)

	var intf models.Interface
	require.NoError(t, db.Preload("Status").Where("device_id = ?", device.ID).First(&intf).Error)
	assert.Equal(t, "Ethernet1", intf.Name)
	require.NotNil(t, intf.MACAddress)
	assert.Equal(t, "00:1c:73:aa:bb:01", *intf.MACAddress)
	assert.Equal(t, "active", intf.Status.Slug)
}

func TestDeviceBackend_UpdateConverges(t *testing.T) {
	db, store := setup(t, testConfig())
	require.Empty(t, runSync(t, store, desiredFabric("SN1", "enabled", 9214), false).Failures())

	desired := desiredFabric("SN1-RMA", "disabled", 1500)
	summary := runSync(t, store, desired, false)
	require.Empty(t, summary.Failures())
	assert.Equal(t, 3, summary.Totals.Applied, "serial, bgp and mtu")
	assertConverged(t, store, desired)

	var intf models.Interface
	require.NoError(t, db.Where("name = ?", "Ethernet1").First(&intf).Error)
	require.NotNil(t, intf.MTU)
	assert.Equal(t, 1500, *intf.MTU)
}

func TestDeviceBackend_GuardedDeletes(t *testing.T) {
	db, store := setup(t, testConfig())
	require.Empty(t, runSync(t, store, desiredFabric("SN1", "enabled", 9214), false).Failures())
	empty := reconcile.NewContainer("cloudvision", inventory.DeviceModel(true), nil)

	summary := runSync(t, store, empty, false)
	assert.Equal(t, 0, summary.Totals.Applied)
	assert.Equal(t, 6, summary.Totals.Skipped)

	var devices int64
	db.Model(&models.Device{}).Count(&devices)
	assert.Equal(t, int64(1), devices)

	summary = runSync(t, store, empty, true)
	require.Empty(t, summary.Failures())
	assert.Equal(t, 6, summary.Totals.Applied)

	var interfaces int64
	db.Model(&models.Device{}).Count(&devices)
	db.Model(&models.Interface{}).Count(&interfaces)
	assert.Zero(t, devices)
	assert.Zero(t, interfaces)
}

func TestDeviceBackend_UndefinedCustomField(t *testing.T) {
	_, store := setup(t, testConfig())
	desired := desiredFabric("SN1", "enabled", 9214)
	sw1, err := desired.Lookup(inventory.TypeDevice, inventory.DeviceKey("sw1"))
	require.NoError(t, err)
	desired.AddChild(sw1, inventory.NewCustomField("sw1", "arista_unknown", reconcile.String("x")))

	summary := runSync(t, store, desired, false)
	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, reconcile.Key("arista_unknown__sw1"), failures[0].Change.Key)
	assert.True(t, errors.Is(failures[0].Err, reconcile.ErrValidation))
}

func TestDeviceBackend_ImportTag(t *testing.T) {
	cfg := testConfig()
	cfg.ApplyImportTag = true
	db, store := setup(t, cfg)
	require.Empty(t, runSync(t, store, desiredFabric("SN1", "enabled", 9214), false).Failures())

	var device models.Device
	require.NoError(t, db.Preload("Tags").Where("name = ?", "sw1").First(&device).Error)
	require.Len(t, device.Tags, 1)
	assert.Equal(t, "cloudvision_imported", device.Tags[0].Name)

	c := reconcile.NewContainer("nautobot", inventory.TagModel(), nil)
	require.NoError(t, nautobot.NewTagAdapter(store, nil).Load(context.Background(), c))
	assert.Zero(t, c.Len(), "the import tag is never pushed to CloudVision")
}

func TestTagAdapter_Load(t *testing.T) {
	db, store := setup(t, testConfig())
	require.Empty(t, runSync(t, store, desiredFabric("SN1", "enabled", 9214), false).Failures())

	red := &models.Tag{Name: "team:red", Slug: "team-red", Color: "ff0000"}
	lab := &models.Tag{Name: "lab", Slug: "lab", Color: "00ff00"}
	require.NoError(t, db.Create(red).Error)
	require.NoError(t, db.Create(lab).Error)
	var device models.Device
	require.NoError(t, db.Where("name = ?", "sw1").First(&device).Error)
	require.NoError(t, db.Model(&device).Association("Tags").Append(red))

	c := reconcile.NewContainer("nautobot", inventory.TagModel(), nil)
	require.NoError(t, nautobot.NewTagAdapter(store, nil).Load(context.Background(), c))

	tag, err := c.Lookup(inventory.TypeTag, inventory.TagKey("team", "red"))
	require.NoError(t, err)
	assert.Equal(t, red.ID, tag.Ref)
	assert.Equal(t, []reconcile.Key{"team__red__sw1"}, tag.Children(inventory.TypeAssignment))
	assert.True(t, c.Has(inventory.TypeTag, inventory.TagKey("lab", "")))
	assert.Len(t, c.All(inventory.TypeAssignment), 1)
}

func TestDeviceAdapter_IgnoresOtherManufacturers(t *testing.T) {
	db, store := setup(t, testConfig())
	ctx := context.Background()

	site, err := store.EnsureSite(ctx)
	require.NoError(t, err)
	role, err := store.EnsureRole(ctx)
	require.NoError(t, err)
	status, err := store.EnsureDefaultStatus(ctx)
	require.NoError(t, err)

	cisco := &models.Manufacturer{Name: "Cisco", Slug: "cisco"}
	require.NoError(t, db.Create(cisco).Error)
	dt := &models.DeviceType{ManufacturerID: cisco.ID, Model: "C9300", Slug: "c9300"}
	require.NoError(t, db.Create(dt).Error)
	require.NoError(t, db.Omit("Tags", "Interfaces", "DeviceType", "Platform").Create(&models.Device{
		Name: "core1", DeviceTypeID: dt.ID, RoleID: role.ID, SiteID: site.ID, StatusID: status.ID,
		CustomFieldData: map[string]any{"arista_bgp": "enabled"},
	}).Error)

	assert.Zero(t, loadCurrent(t, store).Len())
}

func TestDeviceAdapter_NullFieldsAreAbsent(t *testing.T) {
	db, store := setup(t, testConfig())
	require.Empty(t, runSync(t, store, desiredFabric("SN1", "enabled", 9214), false).Failures())

	require.NoError(t, db.Exec("UPDATE dcim_device SET _custom_field_data = ? WHERE name = ?",
		`{"arista_bgp":null,"arista_mpls":true,"arista_topology_type":"-","owner":"netops"}`, "sw1").Error)

	c := loadCurrent(t, store)
	assert.False(t, c.Has(inventory.TypeCustomField, "arista_bgp__sw1"))
	assert.False(t, c.Has(inventory.TypeCustomField, "owner__sw1"), "fields outside the prefix are ignored")
	assert.True(t, c.Has(inventory.TypeCustomField, "arista_mpls__sw1"))
}

func TestStore_ValidationFailure(t *testing.T) {
	cfg := testConfig()
	cfg.StatusColor = "not-a-color"
	_, store := setup(t, cfg)

	_, err := store.EnsureDefaultStatus(context.Background())
	assert.ErrorIs(t, err, reconcile.ErrValidation)
}

func TestResolver_Lookup(t *testing.T) {
	_, store := setup(t, testConfig())
	require.Empty(t, runSync(t, store, desiredFabric("SN1", "enabled", 9214), false).Failures())
	r := nautobot.NewResolver(store)
	ctx := context.Background()

	obj, err := r.Lookup(ctx, inventory.TypeDevice, "sw1")
	require.NoError(t, err)
	assert.Equal(t, "SN1", obj.(*models.Device).Serial)

	obj, err = r.Lookup(ctx, inventory.TypePort, "Ethernet1__sw1")
	require.NoError(t, err)
	assert.Equal(t, "Ethernet1", obj.(models.Interface).Name)

	_, err = r.Lookup(ctx, inventory.TypeDevice, "ghost")
	assert.ErrorIs(t, err, reconcile.ErrNotFound)
}

func TestDeviceAdapter_QueryFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := database.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}))
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM `dcim_device`").WillReturnError(errors.New("connection lost"))

	store := nautobot.NewStore(db, testConfig(), nil)
	c := reconcile.NewContainer("nautobot", inventory.DeviceModel(false), nil)
	err = nautobot.NewDeviceAdapter(store, nautobot.DeviceOptions{Policy: inventory.DefaultTagPolicy()}, nil).Load(context.Background(), c)

	assert.ErrorContains(t, err, "failed to query devices")
	assert.ErrorContains(t, err, "connection lost")
	assert.NoError(t, mock.ExpectationsWereMet())
}
