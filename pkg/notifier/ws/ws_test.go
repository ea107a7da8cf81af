package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dial opens a client/server websocket pair against the hub.
func dial(t *testing.T, hub *Hub, identity domain.Identity) *websocket.Conn {
	t.Helper()

	ready := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Add(identity, conn)
		close(ready)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("server never registered the connection")
	}
	return client
}

func TestHub_SendReachesOwnChannelOnly(t *testing.T) {
	hub := NewHub(zap.NewNop())
	donor := domain.Identity{ID: "d-1", Role: domain.RoleDonor}
	hospital := domain.Identity{ID: "d-1", Role: domain.RoleHospital} // same id, different role

	donorClient := dial(t, hub, donor)
	hospitalClient := dial(t, hub, hospital)

	hub.Send(donor, map[string]string{"type": "newBloodRequest"})

	require.NoError(t, donorClient.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got map[string]string
	require.NoError(t, donorClient.ReadJSON(&got))
	assert.Equal(t, "newBloodRequest", got["type"])

	// The hospital channel with the same raw id must not receive it.
	require.NoError(t, hospitalClient.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var stray json.RawMessage
	err := hospitalClient.ReadJSON(&stray)
	assert.Error(t, err)
}

func TestHub_SendToAbsentChannelIsDropped(t *testing.T) {
	hub := NewHub(zap.NewNop())
	// No session registered; must not panic or block.
	hub.Send(domain.Identity{ID: "nobody", Role: domain.RoleDonor}, "hello")
}

func TestHub_MultipleSessionsPerIdentity(t *testing.T) {
	hub := NewHub(zap.NewNop())
	donor := domain.Identity{ID: "d-2", Role: domain.RoleDonor}

	first := dial(t, hub, donor)
	second := dial(t, hub, donor)

	hub.Send(donor, map[string]string{"type": "ping"})

	for _, client := range []*websocket.Conn{first, second} {
		require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got map[string]string
		require.NoError(t, client.ReadJSON(&got))
		assert.Equal(t, "ping", got["type"])
	}
}

func TestHub_RemoveClosesConnection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	donor := domain.Identity{ID: "d-3", Role: domain.RoleDonor}

	var serverConn *Connection
	ready := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverConn = hub.Add(donor, conn)
		close(ready)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()
	<-ready

	hub.Remove(serverConn)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = client.ReadMessage()
	assert.Error(t, err) // closed by server

	// Sending after removal is a no-op.
	hub.Send(donor, "late")
}
