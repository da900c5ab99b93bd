// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/auth"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/errors"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/relay"
	nuts "github.com/vaudience/go-nuts"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Telemetry *TelemetryHandlers
	Bulb      *BulbHandlers
	Auth      *AuthHandlers
}

// NewResources creates a new Resources instance
func NewResources(relaySvc *relay.Service, authSvc *auth.Service) *Resources {
	return &Resources{
		Telemetry: &TelemetryHandlers{relay: relaySvc},
		Bulb:      &BulbHandlers{relay: relaySvc},
		Auth:      &AuthHandlers{auth: authSvc},
	}
}

// Shared handler helpers

func getPaginationParams(r *http.Request) (offset, limit int) {
	query := r.URL.Query()
	offset, _ = strconv.Atoi(query.Get("offset"))
	limit, _ = strconv.Atoi(query.Get("limit"))

	if limit <= 0 || limit > 100 {
		limit = 50 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	return offset, limit
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
