package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/auth"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/relay"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/repository"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/state"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory repositories backing the router under test.

type memReadingRepo struct {
	mu       sync.Mutex
	readings []*models.Reading
}

func (r *memReadingRepo) Insert(ctx context.Context, reading *models.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings = append(r.readings, reading)
	return nil
}

func (r *memReadingRepo) List(ctx context.Context, offset, limit int) ([]*models.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Reading, len(r.readings))
	copy(out, r.readings)
	return out, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.users == nil {
		r.users = make(map[string]*models.User)
	}
	if _, exists := r.users[user.Username]; exists {
		return repository.ErrDuplicate
	}
	stored := *user
	r.users[user.Username] = &stored
	return nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func newTestRouter(cfg Config) *Router {
	relaySvc := relay.NewService(state.NewStore(), relay.NewHub(), &memReadingRepo{}, nil)
	authSvc := auth.NewService(&memUserRepo{}, "test-secret", time.Hour)
	return NewRouter(relaySvc, authSvc, cfg)
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestIngestThenQueryScenario(t *testing.T) {
	router := newTestRouter(Config{})

	// Ingest preserves the payload verbatim, bulb casing included.
	w := postJSON(t, router, "/data", map[string]string{
		"temperature": "21.5",
		"humidity":    "40",
		"bulb":        "off",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String(), "ingest success has no body")

	w = get(router, "/data")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "21.5", body["temperature"])
	assert.Equal(t, "40", body["humidity"])
	assert.Equal(t, "off", body["bulb"])

	// A bulb command normalizes and updates the snapshot's bulb field.
	w = postJSON(t, router, "/bulb/on", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ON", decodeBody(t, w)["bulb"])

	w = get(router, "/data")
	assert.Equal(t, "ON", decodeBody(t, w)["bulb"])
}

func TestIngestRejectsIncompletePayload(t *testing.T) {
	router := newTestRouter(Config{})

	w := postJSON(t, router, "/data", map[string]string{"temperature": "21.5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/data", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidBulbStateLeavesActuatorUnchanged(t *testing.T) {
	router := newTestRouter(Config{})

	w := postJSON(t, router, "/bulb/bright", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid bulb state", decodeBody(t, w)["error"])

	w = get(router, "/bulb/status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OFF", w.Body.String())
}

func TestBulbStatusRoutes(t *testing.T) {
	router := newTestRouter(Config{})

	postJSON(t, router, "/bulb/On", nil)

	for _, path := range []string{"/bulb/status", "/status"} {
		w := get(router, path)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ON", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	}
}

func TestQueryBeforeFirstIngestReturnsSentinel(t *testing.T) {
	router := newTestRouter(Config{})

	w := get(router, "/data")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "--", body["temperature"])
	assert.Equal(t, "--", body["humidity"])
	assert.Equal(t, "OFF", body["bulb"])
}

func TestRegisterLoginFlow(t *testing.T) {
	router := newTestRouter(Config{})

	w := postJSON(t, router, "/register", models.Credentials{Username: "alice", Password: "s3cret"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "User registered successfully", decodeBody(t, w)["message"])

	// Duplicate username fails with the exact public message.
	w = postJSON(t, router, "/register", models.Credentials{Username: "alice", Password: "other"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username already exists", decodeBody(t, w)["error"])

	// The first registration's hash still verifies.
	w = postJSON(t, router, "/login", models.Credentials{Username: "alice", Password: "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["token"])
}

func TestRegisterAcceptsFormEncoding(t *testing.T) {
	router := newTestRouter(Config{})

	form := url.Values{"username": {"bob"}, "password": {"hunter2"}}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	router := newTestRouter(Config{})

	postJSON(t, router, "/register", models.Credentials{Username: "alice", Password: "s3cret"})

	wrongPassword := postJSON(t, router, "/login", models.Credentials{Username: "alice", Password: "wrong"})
	unknownUser := postJSON(t, router, "/login", models.Credentials{Username: "nobody", Password: "whatever"})

	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, unknownUser.Code)
	assert.Equal(t, decodeBody(t, wrongPassword)["error"], decodeBody(t, unknownUser)["error"])
	assert.Equal(t, "Invalid credentials", decodeBody(t, unknownUser)["error"])
}

func TestEnforcedAuthGatesMutatingRoutes(t *testing.T) {
	router := newTestRouter(Config{EnforceAuth: true})

	// No token: rejected.
	w := postJSON(t, router, "/data", map[string]string{"temperature": "20", "humidity": "50"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, router, "/bulb/on", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Reads stay open.
	assert.Equal(t, http.StatusOK, get(router, "/data").Code)

	// With a token issued by login: accepted.
	postJSON(t, router, "/register", models.Credentials{Username: "alice", Password: "s3cret"})
	login := postJSON(t, router, "/login", models.Credentials{Username: "alice", Password: "s3cret"})
	require.Equal(t, http.StatusOK, login.Code)
	token := decodeBody(t, login)["token"].(string)

	data, _ := json.Marshal(map[string]string{"temperature": "20", "humidity": "50"})
	req := httptest.NewRequest(http.MethodPost, "/data", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(Config{})

	w := get(router, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestReadingsHistoryEndpoint(t *testing.T) {
	router := newTestRouter(Config{})

	postJSON(t, router, "/data", map[string]string{"temperature": "18", "humidity": "33"})

	// The persist runs on a detached goroutine; wait for the row.
	require.Eventually(t, func() bool {
		w := get(router, "/readings")
		if w.Code != http.StatusOK {
			return false
		}
		var readings []models.Reading
		if err := json.Unmarshal(w.Body.Bytes(), &readings); err != nil {
			return false
		}
		return len(readings) == 1 && readings[0].Temperature == "18"
	}, 2*time.Second, 10*time.Millisecond)
}

// Live-channel tests run the router through a real server so the websocket
// handshake happens over TCP.

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) relay.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame relay.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestWebsocketConnectPushThenMutationPush(t *testing.T) {
	router := newTestRouter(Config{})
	server := httptest.NewServer(router)
	defer server.Close()

	conn := dialWS(t, server)
	defer conn.Close()

	// Connect-time push carries the sentinel snapshot.
	frame := readFrame(t, conn)
	require.Equal(t, relay.FrameUpdate, frame.Type)
	require.NotNil(t, frame.Data)
	assert.Equal(t, "--", frame.Data.Temperature)

	// A mutation over HTTP reaches the live subscriber.
	resp, err := http.Post(server.URL+"/bulb/on", "application/json", nil)
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	frame = readFrame(t, conn)
	require.Equal(t, relay.FrameUpdate, frame.Type)
	assert.Equal(t, "ON", frame.Data.Bulb)
}

func TestWebsocketBulbCommand(t *testing.T) {
	router := newTestRouter(Config{})
	server := httptest.NewServer(router)
	defer server.Close()

	sender := dialWS(t, server)
	defer sender.Close()
	observer := dialWS(t, server)
	defer observer.Close()

	readFrame(t, sender)   // drain connect-time pushes
	readFrame(t, observer)

	require.NoError(t, sender.WriteJSON(relay.Frame{Type: relay.FrameBulbCommand, State: "on"}))

	// Both the sender and the observer receive the broadcast.
	senderFrame := readFrame(t, sender)
	observerFrame := readFrame(t, observer)
	assert.Equal(t, "ON", senderFrame.Data.Bulb)
	assert.Equal(t, "ON", observerFrame.Data.Bulb)
}

func TestWebsocketInvalidCommandGetsErrorFrame(t *testing.T) {
	router := newTestRouter(Config{})
	server := httptest.NewServer(router)
	defer server.Close()

	conn := dialWS(t, server)
	defer conn.Close()
	readFrame(t, conn) // drain connect-time push

	require.NoError(t, conn.WriteJSON(relay.Frame{Type: relay.FrameBulbCommand, State: "bright"}))

	frame := readFrame(t, conn)
	require.Equal(t, relay.FrameError, frame.Type)
	assert.Equal(t, "Invalid bulb state", frame.Error)

	// Actuator unchanged.
	resp, err := http.Get(server.URL + "/bulb/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "OFF", string(body))
}
