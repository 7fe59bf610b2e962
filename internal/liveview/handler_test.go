package liveview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-tracker/internal/applications"
	"job-tracker/internal/events"
	"job-tracker/internal/resumes"
	"job-tracker/internal/screens"
	sharedauth "job-tracker/internal/shared/auth"
	"job-tracker/internal/shared/server/middleware"
	"job-tracker/internal/shared/storage/object/local"
	"job-tracker/internal/users"
)

type harness struct {
	server *httptest.Server
	deps   screens.Deps
	appID  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	broker := events.NewMemoryBroker()
	deps := screens.Deps{
		Applications: applications.NewService(applications.NewMemoryRepo(), broker),
		Users:        users.NewService(users.NewMemoryRepo(), broker),
		Resumes:      resumes.NewService(resumes.NewMemoryRepo(), local.New(t.TempDir(), "http://localhost/files"), broker),
		Events:       broker,
		Debounce:     10 * time.Millisecond,
	}
	ctx := context.Background()
	_, err := deps.Users.CreateOrUpdateProfile(ctx, "owner", "owner@example.com", users.ProviderPassword)
	require.NoError(t, err)
	app, err := deps.Applications.Create(ctx, "owner", applications.Input{
		JobTitle:    "Go Developer",
		Company:     "Acme",
		DateApplied: time.Now().UTC(),
		Status:      applications.StatusApplied,
	})
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(nil), middleware.Permissions(deps.Users))
	NewHandler(deps, nil).RegisterRoutes(api)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &harness{server: srv, deps: deps, appID: app.ID}
}

func (h *harness) dial(t *testing.T, screen, uid string) *websocket.Conn {
	t.Helper()
	token, _, err := sharedauth.SignJWT(uid, uid+"@example.com", sharedauth.ProviderPassword)
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/api/v1/live/" + screen
	header := http.Header{"Authorization": {"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, cond func(serverMessage) bool) serverMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg serverMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if cond(msg) {
			return msg
		}
	}
}

func TestLiveDashboardDeleteFlow(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, screens.NameDashboard, "owner")

	readUntil(t, conn, func(m serverMessage) bool {
		return m.Type == "snapshot" && !m.Snapshot.Loading && m.Snapshot.Total == 1
	})

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "action", Action: "delete", ID: h.appID}))
	prompt := readUntil(t, conn, func(m serverMessage) bool { return m.Type == "confirm" })
	require.NotNil(t, prompt.Dialog)
	assert.Equal(t, "Delete Job Application", prompt.Dialog.Title)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "confirm", ID: prompt.ID, OK: true}))
	note := readUntil(t, conn, func(m serverMessage) bool { return m.Type == "toast" })
	assert.Equal(t, "Application deleted successfully", note.Toast.Message)
	assert.False(t, note.Toast.Error)

	readUntil(t, conn, func(m serverMessage) bool {
		return m.Type == "snapshot" && m.Snapshot.Total == 0
	})
}

func TestLiveDeleteDeniedForOtherUser(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, screens.NameDashboard, "intruder")
	readUntil(t, conn, func(m serverMessage) bool { return m.Type == "snapshot" && !m.Snapshot.Loading })

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "action", Action: "delete", ID: h.appID}))
	note := readUntil(t, conn, func(m serverMessage) bool { return m.Type == "toast" || m.Type == "confirm" })
	require.Equal(t, "toast", note.Type, "no confirmation for a denied caller")
	assert.True(t, note.Toast.Error)

	_, err := h.deps.Applications.Get(context.Background(), h.appID)
	assert.NoError(t, err)
}

func TestLiveFilterMessage(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, screens.NameDashboard, "owner")
	readUntil(t, conn, func(m serverMessage) bool { return m.Type == "snapshot" && m.Snapshot.Total == 1 })

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "filter", Name: "status", Value: "offer"}))
	m := readUntil(t, conn, func(m serverMessage) bool {
		return m.Type == "snapshot" && m.Snapshot.Filters.Get("status") == "offer"
	})
	items, ok := m.Snapshot.Items.([]any)
	require.True(t, ok)
	assert.Empty(t, items)
}

func TestUnknownScreenIs404(t *testing.T) {
	h := newHarness(t)
	token, _, err := sharedauth.SignJWT("owner", "owner@example.com", sharedauth.ProviderPassword)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodGet, h.server.URL+"/api/v1/live/reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
