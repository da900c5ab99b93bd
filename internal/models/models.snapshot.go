// FilePath: internal/models/models.snapshot.go
package models

import "time"

// Actuator states accepted by the command endpoints.
const (
	BulbOn  = "ON"
	BulbOff = "OFF"
)

// TelemetrySnapshot is the single live telemetry record. The whole process
// shares exactly one value; every ingest replaces it wholesale and every
// actuator command updates the Bulb field in place.
type TelemetrySnapshot struct {
	Temperature string    `json:"temperature"`
	Humidity    string    `json:"humidity"`
	Bulb        string    `json:"bulb"`
	Timestamp   time.Time `json:"timestamp"`
}

// SentinelSnapshot is the placeholder value held before the first ingest.
func SentinelSnapshot() TelemetrySnapshot {
	return TelemetrySnapshot{
		Temperature: "--",
		Humidity:    "--",
		Bulb:        BulbOff,
	}
}

// TelemetryPayload is the validated ingest body. Temperature and humidity are
// opaque strings as transmitted by the device; Bulb is optional and carried
// through verbatim (ingest never normalizes its case).
type TelemetryPayload struct {
	Temperature *string    `json:"temperature" schema:"temperature"`
	Humidity    *string    `json:"humidity" schema:"humidity"`
	Bulb        string     `json:"bulb,omitempty" schema:"bulb"`
	Timestamp   *time.Time `json:"timestamp,omitempty" schema:"-"`
}
