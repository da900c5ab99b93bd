// FilePath: api/resources/api.resource.telemetry.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/errors"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/relay"
	nuts "github.com/vaudience/go-nuts"
)

// TelemetryHandlers encapsulates the telemetry-related HTTP handlers
type TelemetryHandlers struct {
	relay *relay.Service
}

// @Summary Ingest a telemetry reading
// @Description Replace the live snapshot with a device-submitted reading and broadcast it
// @Tags telemetry
// @Accept json
// @Param reading body models.TelemetryPayload true "Telemetry reading"
// @Success 200 "Empty body"
// @Failure 400 {object} errors.APIError
// @Router /data [post]
func (h *TelemetryHandlers) IngestData(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var payload models.TelemetryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}
	if payload.Temperature == nil || payload.Humidity == nil {
		respondWithError(w, errors.NewValidationError("temperature and humidity are required", nil).WithRequestID(requestID))
		return
	}

	h.relay.Ingest(r.Context(), payload)

	// Devices only check the status line; no body on success.
	w.WriteHeader(http.StatusOK)
}

// @Summary Get the current snapshot
// @Description Poll fallback for clients that cannot hold a live connection
// @Tags telemetry
// @Produce json
// @Success 200 {object} models.TelemetrySnapshot
// @Router /data [get]
func (h *TelemetryHandlers) GetData(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.relay.Current())
}

// @Summary List persisted readings
// @Description Paginated history of ingested readings, newest first
// @Tags telemetry
// @Produce json
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {array} models.Reading
// @Router /readings [get]
func (h *TelemetryHandlers) ListReadings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	offset, limit := getPaginationParams(r)

	readings, err := h.relay.History(r.Context(), offset, limit)
	if err != nil {
		respondWithError(w, errors.NewInternalError("failed to list readings", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}

// ServeWS upgrades the request onto the live channel.
func (h *TelemetryHandlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	relay.ServeWS(h.relay, w, r)
}
