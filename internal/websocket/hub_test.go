package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var feedSecret = []byte("feed-test-secret")

func feedToken(t *testing.T, perms []string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":                "user-1",
		"global_permissions": perms,
		"exp":                time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(feedSecret)
	require.NoError(t, err)
	return signed
}

func feedRouter(hub *Hub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		ServeWs(hub, c, feedSecret)
	})
	return router
}

func TestServeWsRequiresToken(t *testing.T) {
	router := feedRouter(NewHub())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServeWsRejectsWithoutLedgerPermission(t *testing.T) {
	router := feedRouter(NewHub())

	// A valid session alone is not enough to watch other users' balances.
	token := feedToken(t, []string{"users.read"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestServeWsStreamsToLedgerReader(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(feedRouter(hub))
	defer srv.Close()

	token := feedToken(t, []string{"credits.read"})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	event := []byte(`{"user_id":"user-1","amount":-30,"balance":70}`)
	go func() {
		// The handler registers the client right after the handshake; the
		// short delay keeps the broadcast from racing that registration.
		time.Sleep(100 * time.Millisecond)
		hub.Broadcast <- event
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, got, err := conn.ReadMessage()
	require.NoError(t, err)
	require.JSONEq(t, string(event), string(got))
}
