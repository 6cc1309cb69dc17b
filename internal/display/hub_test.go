package display

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"attendcam/internal/logger"
	"attendcam/internal/presentation"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
		defer hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))

	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) Update {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var u Update
	require.NoError(t, conn.ReadJSON(&u))
	return u
}

func TestHub_NewViewerReceivesSnapshot(t *testing.T) {
	hub, server := startHub(t)

	Sink(hub, presentation.FieldName).Set("Asha")
	Sink(hub, presentation.FieldStatus).Set("Matched")

	conn := dial(t, server)

	// snapshot follows display order, identity fields before status
	require.Equal(t, Update{Field: "name", Value: "Asha"}, readUpdate(t, conn))
	require.Equal(t, Update{Field: "output", Value: "Matched"}, readUpdate(t, conn))
}

func TestHub_BroadcastsToRegisteredViewers(t *testing.T) {
	hub, server := startHub(t)

	Sink(hub, presentation.FieldStatus).Set("Unknown face")
	first := dial(t, server)
	second := dial(t, server)

	// once the snapshot arrives the viewer is registered
	readUpdate(t, first)
	readUpdate(t, second)

	Sink(hub, presentation.FieldWelcome).Set("✅ Welcome, Ravi")

	want := Update{Field: "welcome", Value: "✅ Welcome, Ravi"}
	require.Equal(t, want, readUpdate(t, first))
	require.Equal(t, want, readUpdate(t, second))
	require.Equal(t, 2, hub.ClientCount())
}

func TestHub_SnapshotKeepsLatestValue(t *testing.T) {
	hub := NewHub(logger.NewNop())

	hub.Publish(presentation.FieldStatus, "Matched")
	hub.Publish(presentation.FieldStatus, "Error sending image")
	hub.Publish(presentation.FieldStudentID, "21")

	require.Equal(t, []Update{
		{Field: "id", Value: "21"},
		{Field: "output", Value: "Error sending image"},
	}, hub.Snapshot())
}

func TestHub_PublishDoesNotBlockWithoutRun(t *testing.T) {
	hub := NewHub(logger.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			hub.Publish(presentation.FieldStatus, "Matched")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with a full queue")
	}
}

func TestHub_UnregisterAfterStop(t *testing.T) {
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		hub.Unregister(nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after Run returned")
	}
}

func TestHub_StalledViewerDoesNotBlockOthers(t *testing.T) {
	hub, server := startHub(t)

	// registered but never reads, so its socket buffers fill up
	dial(t, server)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	big := strings.Repeat("x", 64<<10)
	for i := 0; i < 600; i++ {
		hub.Publish(presentation.FieldSnapshot, big)
	}
	hub.Publish(presentation.FieldStatus, "Matched")

	healthy := dial(t, server)
	received := make(chan Update, 64)
	go func() {
		for {
			var u Update
			if err := healthy.ReadJSON(&u); err != nil {
				return
			}
			if u.Field != string(presentation.FieldStatus) {
				continue
			}
			select {
			case received <- u:
			default:
			}
		}
	}()

	deadline := time.After(3 * time.Second)
	for {
		hub.Publish(presentation.FieldStatus, "Unknown face")
		select {
		case u := <-received:
			if u.Value == "Unknown face" {
				return
			}
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("healthy viewer got no live update while another viewer was stalled")
		}
	}
}
