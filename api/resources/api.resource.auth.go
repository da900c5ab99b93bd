// FilePath: api/resources/api.resource.auth.go
package resources

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/auth"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/errors"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"
)

// formDecoder decodes urlencoded bodies; browsers post the register form
// without JavaScript, so both encodings are accepted.
var formDecoder = schema.NewDecoder()

func init() {
	formDecoder.IgnoreUnknownKeys(true)
}

// AuthHandlers encapsulates registration and login handlers
type AuthHandlers struct {
	auth *auth.Service
}

// @Summary Register a new account
// @Description Store a new username with a one-way hashed password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.Credentials true "Username and password"
// @Success 201 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Router /register [post]
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	creds, err := decodeCredentials(r)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.auth.Register(r.Context(), creds.Username, creds.Password); err != nil {
		if apiErr, ok := err.(*errors.APIError); ok {
			respondWithError(w, apiErr.WithRequestID(requestID))
			return
		}
		respondWithError(w, errors.NewInternalError("Registration failed", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// @Summary Log in
// @Description Verify credentials and issue a time-bounded bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.Credentials true "Username and password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Router /login [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	creds, err := decodeCredentials(r)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	token, err := h.auth.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if apiErr, ok := err.(*errors.APIError); ok {
			respondWithError(w, apiErr.WithRequestID(requestID))
			return
		}
		respondWithError(w, errors.NewInternalError("Login failed", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}

func decodeCredentials(r *http.Request) (models.Credentials, error) {
	var creds models.Credentials

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return creds, err
		}
		if err := formDecoder.Decode(&creds, r.PostForm); err != nil {
			return creds, err
		}
		return creds, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		return creds, err
	}
	return creds, nil
}
