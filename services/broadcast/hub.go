package broadcast

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/kamalbuilds/pizza-panic-sub000/services/game"
	"github.com/kamalbuilds/pizza-panic-sub000/services/redis"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Agents connect from arbitrary origins; auth happens at the HTTP layer.
		return true
	},
}

// Client is one websocket subscriber to one game's event stream. Address is
// empty for spectators.
type Client struct {
	conn    *websocket.Conn
	address string
	gameID  string
}

// envelope wraps an event with the publishing instance id so the Redis relay
// can drop its own echoes.
type envelope struct {
	Origin string     `json:"origin"`
	Event  game.Event `json:"event"`
}

// relaySub tracks the Redis subscription backing one room.
type relaySub struct {
	pubsub interface{ Close() error }
}

// Hub fans game events out to websocket subscribers, one room per game. When
// a Redis client is provided, events are also published to the game's channel
// and relayed in from sibling instances.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]map[*websocket.Conn]*Client
	relays     map[string]*relaySub
	redis      *redis.RedisClient
	instanceID string
}

func NewHub(redis *redis.RedisClient) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*websocket.Conn]*Client),
		relays:     make(map[string]*relaySub),
		redis:      redis,
		instanceID: uuid.NewString(),
	}
}

// Register adds a connection to the game's room, starting the Redis relay on
// the room's first subscriber.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.gameID]
	if !ok {
		room = make(map[*websocket.Conn]*Client)
		h.rooms[client.gameID] = room
	}
	room[client.conn] = client
	total := len(room)
	startRelay := !ok && h.redis != nil
	h.mu.Unlock()

	log.Printf("[WS] client %s joined game %s stream (room size %d)", client.address, client.gameID, total)
	if startRelay {
		go h.relayLoop(client.gameID)
	}
}

// Unregister drops the connection; an emptied room releases its Redis relay.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.gameID]
	if ok {
		delete(room, client.conn)
		if len(room) == 0 {
			delete(h.rooms, client.gameID)
			if sub, exists := h.relays[client.gameID]; exists {
				sub.pubsub.Close()
				delete(h.relays, client.gameID)
			}
		}
	}
	h.mu.Unlock()

	client.conn.Close()
	log.Printf("[WS] client %s left game %s stream", client.address, client.gameID)
}

// BroadcastEvent serializes the event, writes it to the local room and, when
// Redis is wired, publishes it for sibling instances. Delivery is best effort:
// a failed write drops that connection, never the event.
func (h *Hub) BroadcastEvent(ev game.Event) {
	data, err := json.Marshal(envelope{Origin: h.instanceID, Event: ev})
	if err != nil {
		log.Printf("[WS-ERROR] marshaling event %s for game %s: %v", ev.Type, ev.GameID, err)
		return
	}

	h.writeToRoom(ev.GameID, data)

	if h.redis != nil {
		if err := h.redis.PublishEvent(ev.GameID, data); err != nil {
			log.Printf("[WS-ERROR] publishing event %s for game %s: %v", ev.Type, ev.GameID, err)
		}
	}
}

func (h *Hub) writeToRoom(gameID string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[gameID]
	for conn := range room {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[WS-ERROR] write to game %s subscriber: %v", gameID, err)
			conn.Close()
			delete(room, conn)
		}
	}
}

// relayLoop forwards events published by sibling instances into the local
// room, skipping this instance's own echoes.
func (h *Hub) relayLoop(gameID string) {
	pubsub := h.redis.SubscribeGame(gameID)

	h.mu.Lock()
	if _, stillOpen := h.rooms[gameID]; !stillOpen {
		h.mu.Unlock()
		pubsub.Close()
		return
	}
	h.relays[gameID] = &relaySub{pubsub: pubsub}
	h.mu.Unlock()

	for msg := range pubsub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			log.Printf("[WS-ERROR] malformed relayed event for game %s: %v", gameID, err)
			continue
		}
		if env.Origin == h.instanceID {
			continue
		}
		h.writeToRoom(gameID, []byte(msg.Payload))
	}
}

// RoomSize reports the number of local subscribers for a game.
func (h *Hub) RoomSize(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}
