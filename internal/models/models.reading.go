// FilePath: internal/models/models.reading.go
package models

import "time"

// Reading is one persisted telemetry row. Rows are append-only and carry no
// linkage to actuator commands.
type Reading struct {
	ID          string    `json:"id" db:"id"`
	Temperature string    `json:"temperature" db:"temperature"`
	Humidity    string    `json:"humidity" db:"humidity"`
	Bulb        string    `json:"bulb" db:"bulb"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ReadingFromSnapshot mirrors the snapshot into a durable row.
func ReadingFromSnapshot(s TelemetrySnapshot) *Reading {
	return &Reading{
		Temperature: s.Temperature,
		Humidity:    s.Humidity,
		Bulb:        s.Bulb,
		Timestamp:   s.Timestamp,
	}
}
