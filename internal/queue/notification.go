package queue

import (
	"context"
	"strconv"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
)

const EventContactCreated = "contact.created"

// ContactNotification is the payload put on the notification stream.
type ContactNotification struct {
	ContactID int64     `json:"contact_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type NotificationPublisher struct {
	queue *Queue
}

func NewNotificationPublisher(q *Queue) *NotificationPublisher {
	return &NotificationPublisher{queue: q}
}

func (p *NotificationPublisher) ContactCreated(ctx context.Context, c *model.Contact) error {
	_, err := p.queue.PublishJSON(ctx, ContactNotification{
		ContactID: c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Message:   c.Message,
		Timestamp: c.Timestamp,
	}, map[string]string{
		"type":       EventContactCreated,
		"contact_id": strconv.FormatInt(c.ID, 10),
	})
	return err
}
