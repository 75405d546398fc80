package handler_test

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
	"github.com/Isaac-1-lang/Ecommerce/internal/events"
)

// listen serves the harness app on a loopback port for clients that need a
// real connection.
func (h *harness) listen(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = h.app.Listener(ln) }()
	t.Cleanup(func() { _ = h.app.ShutdownWithTimeout(time.Second) })

	h.baseURL = "http://" + ln.Addr().String()
	return ln.Addr().String()
}

type sseEvent struct {
	name string
	data events.SessionEvent
}

func readSSEEvent(t *testing.T, r *bufio.Reader) (sseEvent, error) {
	t.Helper()

	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return ev, err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if ev.name != "" {
				return ev, nil
			}
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev.data))
		}
	}
}

func TestSessionEventsRejectsBadToken(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)
	revoked := h.login(t, "a@x.com", "correct").Token
	status, _ := h.do(t, http.MethodPost, "/api/auth/logout", revoked, nil)
	require.Equal(t, http.StatusOK, status)

	tests := []struct {
		name  string
		query string
	}{
		{"missing token", ""},
		{"garbage token", "?token=garbage"},
		{"revoked token", "?token=" + revoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := h.do(t, http.MethodGet, "/api/auth/session/events"+tt.query, "", nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			require.NotNil(t, env.Error)
			assert.False(t, env.Success)
		})
	}
}

func TestSessionEventsStreamEndsOnReplacement(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)
	first := h.login(t, "a@x.com", "correct").Token
	addr := h.listen(t)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + addr + "/api/auth/session/events?token=" + first)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)

	tick, err := readSSEEvent(t, reader)
	require.NoError(t, err)
	assert.Equal(t, "tick", tick.name)
	assert.Equal(t, events.TypeTick, tick.data.Type)
	assert.Equal(t, user.ID, tick.data.UserID)
	assert.Equal(t, int64(600), tick.data.RemainingSeconds)

	h.login(t, "a@x.com", "correct")

	replaced, err := readSSEEvent(t, reader)
	require.NoError(t, err)
	assert.Equal(t, "replaced", replaced.name)
	assert.Equal(t, tick.data.SessionID, replaced.data.SessionID)

	_, err = readSSEEvent(t, reader)
	assert.ErrorIs(t, err, io.EOF)

	require.Eventually(t, func() bool { return h.hub.Subscribers(user.ID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestSessionSocketRequiresUpgrade(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)
	t1 := h.login(t, "a@x.com", "correct").Token

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session/ws?token="+t1, nil)
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestSessionSocketRejectsBadToken(t *testing.T) {
	h := newHarness(t)
	addr := h.listen(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/api/auth/session/ws?token=garbage", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionSocketFollowsRefreshAndLogout(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)
	t1 := h.login(t, "a@x.com", "correct").Token
	addr := h.listen(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/api/auth/session/ws?token="+t1, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ev events.SessionEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, events.TypeTick, ev.Type)

	h.clock.Advance(9 * time.Minute)
	status, env := h.do(t, http.MethodPost, "/api/auth/refresh", t1, nil)
	require.Equal(t, http.StatusOK, status)
	var refreshed refreshData
	require.NoError(t, json.Unmarshal(env.Data, &refreshed))
	require.True(t, refreshed.Rotated)

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, events.TypeRefreshed, ev.Type)
	assert.Equal(t, int64(600), ev.RemainingSeconds)

	status, _ = h.do(t, http.MethodPost, "/api/auth/logout", refreshed.Token, nil)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, events.TypeRevoked, ev.Type)

	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.True(t, errors.As(err, &closeErr), "expected close frame, got %v", err)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, string(events.TypeRevoked), closeErr.Text)

	require.Eventually(t, func() bool { return h.hub.Subscribers(user.ID) == 0 }, time.Second, 10*time.Millisecond)
}
