package repository

import (
	"context"
	"errors"

	"github.com/formaops/messaging-gateway/internal/model"
	"gorm.io/gorm"
)

var ErrContactNotFound = errors.New("CONTACT_NOT_FOUND")

// StructuralFilters select learners by their place in the training
// organization: cohort, site, enrollment status, program name.
type StructuralFilters struct {
	CohortIDs    []int64
	SiteIDs      []int64
	Statuses     []string
	ProgramNames []string
}

func (f StructuralFilters) Empty() bool {
	return len(f.CohortIDs) == 0 && len(f.SiteIDs) == 0 && len(f.Statuses) == 0 && len(f.ProgramNames) == 0
}

// ContactRepository reads the CRM-owned contact tables. Nothing here
// ever writes them.
type ContactRepository interface {
	GetByID(ctx context.Context, tenantID string, id int64) (*model.Contact, error)
	FindByPhoneVariants(ctx context.Context, tenantID string, variants []string) (*model.Contact, error)
	FindStructural(ctx context.Context, tenantID string, filters StructuralFilters, limit int) ([]model.Contact, error)
	FindByTags(ctx context.Context, tenantID string, tags []string, limit int) ([]model.Contact, error)
	FindBySources(ctx context.Context, tenantID string, sources []string, limit int) ([]model.Contact, error)
}

type Contact struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &Contact{db: db}
}

func (c *Contact) GetByID(ctx context.Context, tenantID string, id int64) (*model.Contact, error) {
	var contact model.Contact

	err := c.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&contact).Error
	if err == nil {
		return &contact, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContactNotFound
	}

	return nil, err
}

// FindByPhoneVariants returns the most recently created contact whose
// stored phone matches any of the given formats.
func (c *Contact) FindByPhoneVariants(ctx context.Context, tenantID string, variants []string) (*model.Contact, error) {
	if len(variants) == 0 {
		return nil, ErrContactNotFound
	}

	var contact model.Contact

	err := c.db.WithContext(ctx).
		Where("tenant_id = ? AND phone IN ?", tenantID, variants).
		Order("created_at DESC").
		First(&contact).Error
	if err == nil {
		return &contact, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContactNotFound
	}

	return nil, err
}

func (c *Contact) FindStructural(ctx context.Context, tenantID string, filters StructuralFilters, limit int) ([]model.Contact, error) {
	if filters.Empty() {
		return nil, nil
	}

	query := c.db.WithContext(ctx).Where("tenant_id = ?", tenantID)

	if len(filters.CohortIDs) > 0 {
		query = query.Where("cohort_id IN ?", filters.CohortIDs)
	}
	if len(filters.SiteIDs) > 0 {
		query = query.Where("site_id IN ?", filters.SiteIDs)
	}
	if len(filters.Statuses) > 0 {
		query = query.Where("status IN ?", filters.Statuses)
	}
	if len(filters.ProgramNames) > 0 {
		query = query.Where("program_name IN ?", filters.ProgramNames)
	}

	var contacts []model.Contact
	if err := query.Order("id").Limit(limit).Find(&contacts).Error; err != nil {
		return nil, err
	}

	return contacts, nil
}

func (c *Contact) FindByTags(ctx context.Context, tenantID string, tags []string, limit int) ([]model.Contact, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	var contacts []model.Contact

	err := c.db.WithContext(ctx).
		Joins("JOIN contact_tags ON contact_tags.contact_id = contacts.id").
		Where("contacts.tenant_id = ? AND contact_tags.tag IN ?", tenantID, tags).
		Group("contacts.id").
		Order("contacts.id").
		Limit(limit).
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

func (c *Contact) FindBySources(ctx context.Context, tenantID string, sources []string, limit int) ([]model.Contact, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	var contacts []model.Contact

	err := c.db.WithContext(ctx).
		Where("tenant_id = ? AND source IN ?", tenantID, sources).
		Order("id").
		Limit(limit).
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}
