package nautobot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cvsync/core/reconcile"
	"cvsync/core/validation"
	"cvsync/feature/nautobot/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps the Nautobot database with get-or-create helpers for the rows
// imported devices reference. A Store caches resolved rows and belongs to one
// run.
type Store struct {
	db     *gorm.DB
	cfg    Config
	logger *zap.Logger

	site     *models.Site
	role     *models.DeviceRole
	status   *models.Status
	maker    *models.Manufacturer
	tag      *models.Tag
	statuses map[string]*models.Status
}

// NewStore creates a store.
func NewStore(db *gorm.DB, cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, cfg: cfg, logger: logger, statuses: make(map[string]*models.Status)}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB { return s.db }

// create validates row and inserts it. Validation failures wrap
// reconcile.ErrValidation.
func (s *Store) create(ctx context.Context, db *gorm.DB, row any) error {
	if err := validation.Struct(row); err != nil {
		return fmt.Errorf("%w: %v", reconcile.ErrValidation, err)
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return translate(err)
	}
	return nil
}

// save validates row and updates every column.
func (s *Store) save(ctx context.Context, db *gorm.DB, row any) error {
	if err := validation.Struct(row); err != nil {
		return fmt.Errorf("%w: %v", reconcile.ErrValidation, err)
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Save(row).Error; err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", reconcile.ErrAlreadyExists, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", reconcile.ErrDependencyExists, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", reconcile.ErrNotFound, err)
	}
	return err
}

// firstOrCreate returns the row matching query, creating it from build when
// absent.
func firstOrCreate[T any](ctx context.Context, s *Store, query map[string]any, build func() *T) (*T, error) {
	var row T
	err := s.db.WithContext(ctx).Where(query).First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := build()
	if err := s.create(ctx, s.db, created); err != nil {
		return nil, err
	}
	s.logger.Info("Created missing row", zap.String("table", tableOf(created)), zap.Any("match", query))
	return created, nil
}

func tableOf(row any) string {
	if t, ok := row.(interface{ TableName() string }); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", row)
}

// EnsureManufacturer returns the configured manufacturer.
func (s *Store) EnsureManufacturer(ctx context.Context) (*models.Manufacturer, error) {
	if s.maker != nil {
		return s.maker, nil
	}
	var rows []models.Manufacturer
	if err := s.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(s.cfg.Manufacturer)).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 1 {
		s.maker = &rows[0]
		return s.maker, nil
	}
	row := &models.Manufacturer{Name: s.cfg.Manufacturer, Slug: models.Slugify(s.cfg.Manufacturer)}
	if err := s.create(ctx, s.db, row); err != nil {
		return nil, fmt.Errorf("failed to create manufacturer: %w", err)
	}
	s.maker = row
	return row, nil
}

// EnsureStatus returns the status with the given slug, creating it with color.
func (s *Store) EnsureStatus(ctx context.Context, name, color string) (*models.Status, error) {
	slug := models.Slugify(name)
	if st, ok := s.statuses[slug]; ok {
		return st, nil
	}
	st, err := firstOrCreate(ctx, s, map[string]any{"slug": slug}, func() *models.Status {
		return &models.Status{Name: name, Slug: slug, Color: color}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve status %s: %w", slug, err)
	}
	s.statuses[slug] = st
	return st, nil
}

// EnsureDefaultStatus returns the status given to imported devices.
func (s *Store) EnsureDefaultStatus(ctx context.Context) (*models.Status, error) {
	if s.status != nil {
		return s.status, nil
	}
	st, err := s.EnsureStatus(ctx, s.cfg.Status, s.cfg.StatusColor)
	if err != nil {
		return nil, err
	}
	s.status = st
	return st, nil
}

// EnsureSite returns the default site.
func (s *Store) EnsureSite(ctx context.Context) (*models.Site, error) {
	if s.site != nil {
		return s.site, nil
	}
	st, err := s.EnsureDefaultStatus(ctx)
	if err != nil {
		return nil, err
	}
	site, err := firstOrCreate(ctx, s, map[string]any{"name": s.cfg.Site}, func() *models.Site {
		return &models.Site{Name: s.cfg.Site, Slug: models.Slugify(s.cfg.Site), StatusID: st.ID}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve site %s: %w", s.cfg.Site, err)
	}
	s.site = site
	return site, nil
}

// EnsureRole returns the default device role.
func (s *Store) EnsureRole(ctx context.Context) (*models.DeviceRole, error) {
	if s.role != nil {
		return s.role, nil
	}
	role, err := firstOrCreate(ctx, s, map[string]any{"name": s.cfg.Role}, func() *models.DeviceRole {
		return &models.DeviceRole{Name: s.cfg.Role, Slug: models.Slugify(s.cfg.Role), Color: s.cfg.RoleColor}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve role %s: %w", s.cfg.Role, err)
	}
	s.role = role
	return role, nil
}

// EnsureDeviceType returns the device type for model under the manufacturer.
func (s *Store) EnsureDeviceType(ctx context.Context, model string) (*models.DeviceType, error) {
	maker, err := s.EnsureManufacturer(ctx)
	if err != nil {
		return nil, err
	}
	dt, err := firstOrCreate(ctx, s, map[string]any{"manufacturer_id": maker.ID, "model": model}, func() *models.DeviceType {
		return &models.DeviceType{ManufacturerID: maker.ID, Model: model, Slug: models.Slugify(model)}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device type %s: %w", model, err)
	}
	dt.Manufacturer = *maker
	return dt, nil
}

// EnsurePlatform returns the platform named name, created under the
// manufacturer when missing.
func (s *Store) EnsurePlatform(ctx context.Context, name string) (*models.Platform, error) {
	maker, err := s.EnsureManufacturer(ctx)
	if err != nil {
		return nil, err
	}
	p, err := firstOrCreate(ctx, s, map[string]any{"name": name}, func() *models.Platform {
		return &models.Platform{Name: name, Slug: models.Slugify(name), ManufacturerID: &maker.ID}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve platform %s: %w", name, err)
	}
	return p, nil
}

// EnsureImportTag returns the tag applied to imported devices.
func (s *Store) EnsureImportTag(ctx context.Context) (*models.Tag, error) {
	if s.tag != nil {
		return s.tag, nil
	}
	tag, err := firstOrCreate(ctx, s, map[string]any{"name": s.cfg.ImportTag}, func() *models.Tag {
		return &models.Tag{Name: s.cfg.ImportTag, Slug: models.Slugify(s.cfg.ImportTag), Color: s.cfg.ImportTagColor}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve import tag: %w", err)
	}
	s.tag = tag
	return tag, nil
}

// EnsureCustomField defines a custom field of type typ ("text" or "boolean").
func (s *Store) EnsureCustomField(ctx context.Context, name, label, typ string) (*models.CustomField, error) {
	return firstOrCreate(ctx, s, map[string]any{"name": name}, func() *models.CustomField {
		return &models.CustomField{Name: name, Label: label, Type: typ}
	})
}

// CustomFieldDefined reports whether a custom field definition exists.
func (s *Store) CustomFieldDefined(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CustomField{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Devices returns the devices of the manufacturer with their associations.
func (s *Store) Devices(ctx context.Context, withInterfaces bool) ([]models.Device, error) {
	q := s.db.WithContext(ctx).
		Joins("JOIN dcim_devicetype ON dcim_devicetype.id = dcim_device.device_type_id").
		Joins("JOIN dcim_manufacturer ON dcim_manufacturer.id = dcim_devicetype.manufacturer_id").
		Where("LOWER(dcim_manufacturer.name) = ?", strings.ToLower(s.cfg.Manufacturer)).
		Preload("DeviceType").
		Preload("Platform").
		Preload("Tags").
		Order("dcim_device.name")
	if withInterfaces {
		q = q.Preload("Interfaces.Status")
	}

	var devices []models.Device
	if err := q.Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	return devices, nil
}

// DeviceByName returns the named device of the manufacturer.
func (s *Store) DeviceByName(ctx context.Context, name string) (*models.Device, error) {
	var device models.Device
	err := s.db.WithContext(ctx).
		Joins("JOIN dcim_devicetype ON dcim_devicetype.id = dcim_device.device_type_id").
		Joins("JOIN dcim_manufacturer ON dcim_manufacturer.id = dcim_devicetype.manufacturer_id").
		Where("LOWER(dcim_manufacturer.name) = ?", strings.ToLower(s.cfg.Manufacturer)).
		Where("dcim_device.name = ?", name).
		Preload("DeviceType").
		Preload("Platform").
		First(&device).Error
	if err != nil {
		return nil, translate(err)
	}
	return &device, nil
}

// Tags returns every tag with the devices carrying it.
func (s *Store) Tags(ctx context.Context) ([]models.Tag, map[string][]string, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to query tags: %w", err)
	}

	devices, err := s.Devices(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	tagged := make(map[string][]string)
	for _, d := range devices {
		for _, t := range d.Tags {
			tagged[t.ID] = append(tagged[t.ID], d.Name)
		}
	}
	return tags, tagged, nil
}
