package socket

import (
  "context"
  "fmt"
  "sync"

  "github.com/google/uuid"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
)

// Message is one event pushed to subscribed clients, JSON-encoded on the wire.
type Message struct {
  Channel string      `json:"channel"`
  Event   string      `json:"event"`
  Payload interface{} `json:"payload,omitempty"`
}

const EventConversationUpdated = "conversation:updated"

// UserChannel is the per-user channel that carries conversation events.
func UserChannel(userID uuid.UUID) string {
  return fmt.Sprintf("user:%s", userID.String())
}

type Hub struct {
  log      *logger.Logger
  mu       sync.RWMutex
  channels map[string]map[uuid.UUID]*Client

  redisPubSub *RedisPubSub
}

func NewHub(log *logger.Logger) *Hub {
  return &Hub{
    log:      log.With("component", "SocketHub"),
    channels: make(map[string]map[uuid.UUID]*Client),
  }
}

// SetRedisPubSub attaches the cross-node fanout. Optional, a single node runs
// fine without it.
func (h *Hub) SetRedisPubSub(rp *RedisPubSub) {
  h.redisPubSub = rp
}

func (h *Hub) Subscribe(client *Client, channels []string) {
  h.mu.Lock()
  defer h.mu.Unlock()

  for _, ch := range channels {
    if h.channels[ch] == nil {
      h.channels[ch] = make(map[uuid.UUID]*Client)
    }
    h.channels[ch][client.ID] = client
  }
  h.log.Debug("Client subscribed", "client", client.ID, "channels", channels)
}

func (h *Hub) Unsubscribe(client *Client) {
  h.mu.Lock()
  defer h.mu.Unlock()

  for ch, clientsMap := range h.channels {
    if _, ok := clientsMap[client.ID]; ok {
      delete(clientsMap, client.ID)
      if len(clientsMap) == 0 {
        delete(h.channels, ch)
      }
    }
  }
  h.log.Debug("Client unsubscribed from all channels", "client", client.ID)
}

func (h *Hub) UnsubscribeFromChannel(client *Client, channel string) {
  h.mu.Lock()
  defer h.mu.Unlock()
  if clientsMap, ok := h.channels[channel]; ok {
    delete(clientsMap, client.ID)
    if len(clientsMap) == 0 {
      delete(h.channels, channel)
    }
  }
}

func (h *Hub) localBroadcast(msg Message) {
  h.mu.RLock()
  defer h.mu.RUnlock()

  clientsMap, ok := h.channels[msg.Channel]
  if !ok {
    return
  }
  for _, client := range clientsMap {
    select {
    case client.Outbound <- msg:
    default:
      h.log.Warn("Dropping message to client; outbound buffer full", "client", client.ID, "channel", msg.Channel)
    }
  }
}

// BroadcastGlobal sends a message to local subscribers and, when Redis pubsub
// is attached, to every other node.
func (h *Hub) BroadcastGlobal(ctx context.Context, msg Message) {
  h.localBroadcast(msg)

  if h.redisPubSub != nil {
    if err := h.redisPubSub.Publish(msg); err != nil {
      h.log.Warn("Failed to publish to Redis", "error", err)
    }
  }
}

// ConversationUpdated pushes a conversation-updated event to the owner's
// channel. Satisfies services.ConversationNotifier.
func (h *Hub) ConversationUpdated(userID uuid.UUID, conversationID uuid.UUID) {
  h.BroadcastGlobal(context.Background(), Message{
    Channel: UserChannel(userID),
    Event:   EventConversationUpdated,
    Payload: map[string]string{"conversation_id": conversationID.String()},
  })
}
