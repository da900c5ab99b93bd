// FilePath: api/resources/api.resource.bulb.go
package resources

import (
	"net/http"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/errors"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/relay"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// BulbHandlers encapsulates the actuator HTTP handlers
type BulbHandlers struct {
	relay *relay.Service
}

// @Summary Set the bulb state
// @Description Accepts on/off (any casing), updates the actuator and broadcasts the snapshot
// @Tags bulb
// @Produce json
// @Param state path string true "Desired state (on or off)"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Router /bulb/{state} [post]
func (h *BulbHandlers) SetBulbState(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	state, err := h.relay.Command(r.Context(), vars["state"])
	if err != nil {
		if apiErr, ok := err.(*errors.APIError); ok {
			respondWithError(w, apiErr.WithRequestID(requestID))
			return
		}
		respondWithError(w, errors.NewInternalError("failed to set bulb state", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"bulb": state})
}

// @Summary Get the bulb state
// @Description Plain-text actuator state, polled by devices
// @Tags bulb
// @Produce plain
// @Success 200 {string} string "ON or OFF"
// @Router /bulb/status [get]
func (h *BulbHandlers) GetBulbStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.relay.ActuatorState()))
}
