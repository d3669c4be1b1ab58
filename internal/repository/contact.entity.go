package repository

import (
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
)

type ContactEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `db:"name"       gorm:"column:name;not null"`
	Email     string    `db:"email"      gorm:"column:email;not null"`
	Message   string    `db:"message"    gorm:"column:message;not null"`
	Timestamp time.Time `db:"timestamp"  gorm:"column:timestamp;autoCreateTime"`
	IPAddress *string   `db:"ip_address" gorm:"column:ip_address"`
	UserAgent *string   `db:"user_agent" gorm:"column:user_agent"`
	Status    string    `db:"status"     gorm:"column:status;not null;default:new"`
}

func (ContactEntity) TableName() string {
	return "contacts"
}

func toContactEntity(c *model.Contact) *ContactEntity {
	if c == nil {
		return nil
	}
	return &ContactEntity{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Message:   c.Message,
		Timestamp: c.Timestamp,
		IPAddress: c.IPAddress,
		UserAgent: c.UserAgent,
		Status:    string(c.Status),
	}
}

func toContactModel(e *ContactEntity) *model.Contact {
	if e == nil {
		return nil
	}
	return &model.Contact{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		Message:   e.Message,
		Timestamp: e.Timestamp,
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		Status:    model.ContactStatus(e.Status),
	}
}

func toContactModels(entities []*ContactEntity) []*model.Contact {
	models := make([]*model.Contact, len(entities))
	for i, e := range entities {
		models[i] = toContactModel(e)
	}
	return models
}
