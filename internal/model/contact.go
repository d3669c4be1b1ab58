package model

import "time"

// ContactStatus is the triage state of a submission.
type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusRead     ContactStatus = "read"
	ContactStatusReplied  ContactStatus = "replied"
	ContactStatusArchived ContactStatus = "archived"
)

// ContactStatuses lists every accepted status in display order.
var ContactStatuses = []ContactStatus{
	ContactStatusNew,
	ContactStatusRead,
	ContactStatusReplied,
	ContactStatusArchived,
}

func (s ContactStatus) Valid() bool {
	for _, v := range ContactStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Contact struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	IPAddress *string       `json:"ip_address"`
	UserAgent *string       `json:"user_agent"`
	Status    ContactStatus `json:"status"`
}

// ContactSubmission is the raw form payload as received from the client.
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// RequestMeta is what the transport knows about the caller.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
