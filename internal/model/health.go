package model

import "time"

type Health struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	// Uptime is the process uptime in seconds.
	Uptime float64 `json:"uptime"`
}
