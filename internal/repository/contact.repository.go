package repository

import (
	"context"
	"errors"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when a contact does not exist.
	ErrNotFound = errors.New("contact not found")
)

type ContactRepository struct {
	*db.DB
}

func NewContactRepository(d *db.DB) *ContactRepository {
	return &ContactRepository{
		d,
	}
}

// Create inserts a submission. The store assigns id, and timestamp when it
// is zero; status defaults to new.
func (r *ContactRepository) Create(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	entity := toContactEntity(c)
	if entity.Status == "" {
		entity.Status = string(model.ContactStatusNew)
	}

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toContactModel(entity), nil
}

// List returns every contact, newest first. Ties on timestamp fall back to
// the higher id.
func (r *ContactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	var entities []*ContactEntity
	err := r.Read(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}

	return toContactModels(entities), nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id int64) (*model.Contact, error) {
	var entity ContactEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return toContactModel(&entity), nil
}

func (r *ContactRepository) UpdateStatus(ctx context.Context, id int64, status model.ContactStatus) error {
	res := r.Write(ctx).
		Model(&ContactEntity{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count is used by the CLI and health probes.
func (r *ContactRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.Read(ctx).Model(&ContactEntity{}).Count(&n).Error
	return n, err
}
