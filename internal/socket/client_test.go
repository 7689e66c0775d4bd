package socket

import (
  "context"
  "net/http"
  "net/http/httptest"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"
  "github.com/gorilla/websocket"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
)

var testUpgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// startTestClient upgrades a live connection the way the websocket handler
// does and starts both pumps.
func startTestClient(t *testing.T, hub *Hub) (*Client, *websocket.Conn) {
  t.Helper()
  clientCh := make(chan *Client, 1)
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    conn, err := testUpgrader.Upgrade(w, r, nil)
    if err != nil {
      t.Errorf("upgrade failed: %v", err)
      return
    }
    ctx, cancel := context.WithCancel(context.Background())
    client := NewClient(conn, hub, uuid.New(), cancel, logger.NewNop())
    hub.Subscribe(client, []string{UserChannel(client.UserID)})
    go client.ReadLoop(ctx)
    go client.WriteLoop(ctx)
    clientCh <- client
  }))
  t.Cleanup(srv.Close)

  url := "ws" + strings.TrimPrefix(srv.URL, "http")
  peer, _, err := websocket.DefaultDialer.Dial(url, nil)
  if err != nil {
    t.Fatalf("dial failed: %v", err)
  }
  t.Cleanup(func() { _ = peer.Close() })

  select {
  case client := <-clientCh:
    return client, peer
  case <-time.After(2 * time.Second):
    t.Fatal("server never built the client")
    return nil, nil
  }
}

func subscriberCount(hub *Hub, channel string) int {
  hub.mu.RLock()
  defer hub.mu.RUnlock()
  return len(hub.channels[channel])
}

func TestPeerDisconnectTearsDownClient(t *testing.T) {
  hub := NewHub(logger.NewNop())
  client, peer := startTestClient(t, hub)
  channel := UserChannel(client.UserID)
  if got := subscriberCount(hub, channel); got != 1 {
    t.Fatalf("expected 1 subscriber, got %d", got)
  }

  // Peer goes away; both pumps exit and run their deferred close.
  _ = peer.Close()

  deadline := time.Now().Add(2 * time.Second)
  for subscriberCount(hub, channel) != 0 {
    if time.Now().After(deadline) {
      t.Fatal("client was never unsubscribed after disconnect")
    }
    time.Sleep(10 * time.Millisecond)
  }

  // Give the second pump time to land its deferred close too.
  time.Sleep(50 * time.Millisecond)

  // A broadcast after teardown must be a no-op, never a send on a closed channel.
  hub.BroadcastGlobal(context.Background(), Message{Channel: channel, Event: EventConversationUpdated})
}

func TestClientCloseIsIdempotent(t *testing.T) {
  hub := NewHub(logger.NewNop())
  client, _ := startTestClient(t, hub)

  client.close()
  client.close()

  if got := subscriberCount(hub, UserChannel(client.UserID)); got != 0 {
    t.Errorf("expected client to be unsubscribed after close, %d still registered", got)
  }
}
