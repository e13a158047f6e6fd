package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"station_queue/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Hub хранит подключения клиентов, сгруппированные по каналу уведомлений
// (station-<id> или participant-<id>).
type Hub struct {
	// Для каждого канала храним множество подключений.
	clients map[string]map[*Client]bool
	// Канал для регистрации нового клиента.
	register chan *Client
	// Канал для удаления клиента.
	unregister chan *Client
	// Канал для трансляции сообщений в конкретный канал.
	broadcast chan BroadcastMessage
	// Mutex для защиты карты клиентов.
	mu  sync.RWMutex
	log *zap.Logger
	// Закрывается, когда Run завершился.
	done chan struct{}
}

var _ notify.Sink = (*Hub)(nil)

var errHubStopped = errors.New("ws: hub stopped")

// BroadcastMessage представляет сообщение для рассылки в определённый канал.
type BroadcastMessage struct {
	Channel string
	Message []byte
}

// NewHub создает новый Hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastMessage),
		log:        log,
		done:       make(chan struct{}),
	}
}

// Run запускает цикл обработки каналов хаба до отмены ctx.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Channel] == nil {
				h.clients[client.Channel] = make(map[*Client]bool)
			}
			h.clients[client.Channel][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[message.Channel] {
				select {
				case client.Send <- message.Message:
				default:
					// медленный клиент: отключаем
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove вызывается под h.mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.Channel]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.Channel)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.remove(client)
		}
	}
}

// Subscribers возвращает число подключений к каналу.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[channel])
}

// Publish реализует notify.Sink: сообщение уходит всем подписчикам канала.
// Канал без подписчиков — не ошибка.
func (h *Hub) Publish(ctx context.Context, msg notify.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("ws: marshal message: %w", err)
	}
	select {
	case h.broadcast <- BroadcastMessage{Channel: msg.Channel, Message: body}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ws: broadcast %s: %w", msg.Channel, ctx.Err())
	case <-h.done:
		return errHubStopped
	}
}

// Client представляет одно подключение через WebSocket.
type Client struct {
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	Channel string
}

// readPump читает сообщения из WebSocket-соединения.
// Входящие сообщения не обрабатываются, отслеживается только разрыв соединения.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.log.Debug("разрыв websocket", zap.String("channel", c.Channel), zap.Error(err))
			}
			return
		}
	}
}

// writePump отправляет сообщения клиенту из канала Send.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Канал закрыт.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			// Отправка ping-сообщения для поддержания соединения.
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Настраиваем апгрейдер для WebSocket с разрешением всех источников.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Serve обновляет соединение до WebSocket и подписывает клиента на channel.
// onSubscribed вызывается после регистрации, например чтобы разослать
// текущее состояние.
func (h *Hub) Serve(c *gin.Context, channel string, onSubscribed func()) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ошибка обновления до WebSocket", zap.Error(err))
		return
	}
	client := &Client{
		Hub:     h,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Channel: channel,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}
	if onSubscribed != nil {
		onSubscribed()
	}

	go client.writePump()
	client.readPump()
}
