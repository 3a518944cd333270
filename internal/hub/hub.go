package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shenikar/radius/internal/dispatch"
	"github.com/shenikar/radius/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	TypeIncidents = "incidents"
	TypeDispatch  = "dispatch"

	writeWait  = 10 * time.Second
	sendBuffer = 64
)

// IncidentsMessage - текущий набор активных инцидентов, новые первыми
type IncidentsMessage struct {
	Type      string             `json:"type"`
	Count     int                `json:"count"`
	Incidents []*models.Incident `json:"incidents"`
}

// DispatchMessage - текущее состояние кнопки SOS
type DispatchMessage struct {
	Type     string        `json:"type"`
	Dispatch dispatch.View `json:"dispatch"`
}

// IncidentLister отдает текущий синхронизированный набор
type IncidentLister interface {
	Incidents() []*models.Incident
}

// StateReader отдает текущее состояние процесса вызова
type StateReader interface {
	State() dispatch.State
}

// Hub рассылает изменения всем подключенным websocket клиентам.
// Рассылка только кладет сообщение в очередь клиента; в соединение пишет
// writePump клиента, поэтому медленный клиент не задерживает синхронизатор.
type Hub struct {
	incidents IncidentLister
	workflow  StateReader
	logger    *logrus.Logger
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// client - подключение и его очередь исходящих сообщений.
// send закрывает тот, кто удалил клиента из clients.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(incidents IncidentLister, workflow StateReader, logger *logrus.Logger) *Hub {
	return &Hub{
		incidents: incidents,
		workflow:  workflow,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP поднимает websocket и сразу отправляет текущее состояние
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	// Начальное состояние встает в очередь раньше любой рассылки
	h.mu.Lock()
	incidents, err := json.Marshal(newIncidentsMessage(h.incidents.Incidents()))
	if err != nil {
		h.mu.Unlock()
		h.logger.WithError(err).Error("Failed to marshal websocket message")
		_ = conn.Close()
		return
	}
	state, err := json.Marshal(DispatchMessage{Type: TypeDispatch, Dispatch: dispatch.ViewOf(h.workflow.State())})
	if err != nil {
		h.mu.Unlock()
		h.logger.WithError(err).Error("Failed to marshal websocket message")
		_ = conn.Close()
		return
	}
	c.send <- incidents
	c.send <- state
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", count).Info("Websocket client connected")
	go h.writePump(c)
	go h.readPump(c)
}

// BroadcastIncidents подходит как наблюдатель синхронизатора
func (h *Hub) BroadcastIncidents(incidents []*models.Incident) {
	h.broadcast(newIncidentsMessage(incidents))
}

// BroadcastDispatch подходит как наблюдатель процесса вызова
func (h *Hub) BroadcastDispatch(state dispatch.State) {
	h.broadcast(DispatchMessage{Type: TypeDispatch, Dispatch: dispatch.ViewOf(state)})
}

// Clients возвращает число подключенных клиентов
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close отключает всех клиентов
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.drop(c)
	}
}

// broadcast не блокируется: клиент с переполненной очередью отключается
func (h *Hub) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal websocket message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Dropping slow websocket client")
			h.drop(c)
		}
	}
}

// drop вызывается с захваченным mu
func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.drop(c)
	h.mu.Unlock()
}

// writePump - единственный писатель в соединение клиента
func (h *Hub) writePump(c *client) {
	defer func() { _ = c.conn.Close() }()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.WithError(err).Debug("Dropping websocket client after failed write")
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "connection closed by server"),
		time.Now().Add(time.Second))
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func newIncidentsMessage(incidents []*models.Incident) IncidentsMessage {
	if incidents == nil {
		incidents = []*models.Incident{}
	}
	return IncidentsMessage{Type: TypeIncidents, Count: len(incidents), Incidents: incidents}
}
