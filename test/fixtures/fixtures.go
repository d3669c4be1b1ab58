package fixtures

import (
	"strings"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/config"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
)

// Config is a complete configuration for an in-process API over SQLite. The
// client address is taken from one trusted proxy hop so tests can pick it
// with X-Forwarded-For.
func Config() *config.Config {
	return &config.Config{
		AppEnv:               "test",
		AppName:              "portfolio_contact_test",
		CorsAllowOrigin:      "*",
		TrustedProxyCount:    1,
		DBDriver:             config.DriverSQLite,
		SQLitePath:           ":memory:",
		ContactNameMaxLen:    100,
		ContactMessageMaxLen: 1000,
		RateLimitMax:         5,
		RateLimitWindow:      15 * time.Minute,
		RateLimitBackend:     config.RateLimitMemory,
		AdminJWTSecret:       "e2e-secret",
		AdminJWTTTL:          time.Hour,
		NotifyQueue:          "contact:notifications",
		NotifyConsumerGroup:  "notifier",
		NotifyMaxRetries:     3,
		NotifyPollInterval:   20 * time.Millisecond,
		NotifyTo:             "owner@example.com",
	}
}

func Submission(name, email, message string) model.ContactSubmission {
	return model.ContactSubmission{Name: name, Email: email, Message: message}
}

func ValidSubmission() model.ContactSubmission {
	return Submission("Ada Lovelace", "ada@example.com", "I would like to talk about your analytics work.")
}

var (
	ValidEmails = []string{
		"ada@example.com",
		"first.last@sub.example.org",
		"user+tag@example.co.uk",
		"UPPER@Example.COM",
	}

	InvalidEmails = []string{
		"plainaddress",
		"@example.com",
		"ada@",
		"ada@@example.com",
		"ada example@example.com",
	}

	BlankValues = []string{
		"",
		"   ",
		"\n\t",
	}
)

// LongName is one character over the default name limit.
func LongName() string {
	return strings.Repeat("n", 101)
}

// LongMessage is one character over the default message limit.
func LongMessage() string {
	return strings.Repeat("m", 1001)
}

func ContactWithStatus(name string, status model.ContactStatus) *model.Contact {
	return &model.Contact{
		Name:      name,
		Email:     strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Message:   "Hello from " + name,
		Timestamp: time.Now().UTC(),
		Status:    status,
	}
}
