package ws

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"party-on-delivery/internal/config"
	"party-on-delivery/internal/http/handlers"
	"party-on-delivery/internal/utils"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config

	groupOrderRealtime *groupOrderRealtime
}

func New(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config) *Server {
	srv := &Server{DB: db, Logger: logger, Config: cfg}
	srv.groupOrderRealtime = newGroupOrderRealtime(db, logger)
	return srv
}

type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

// groupOrderRealtime fans group order changes out to everyone viewing an
// invite link. The API raises pg_notify('group_order_updates', order_number)
// after any mutation; a single LISTEN connection feeds all subscribers.
type groupOrderRealtime struct {
	db     *pgxpool.Pool
	logger *zap.Logger

	started sync.Once
	mu      sync.RWMutex
	subs    map[string]map[*wsClient]struct{}
}

func newGroupOrderRealtime(db *pgxpool.Pool, logger *zap.Logger) *groupOrderRealtime {
	return &groupOrderRealtime{
		db:     db,
		logger: logger,
		subs:   make(map[string]map[*wsClient]struct{}),
	}
}

func (gr *groupOrderRealtime) ensureStarted() {
	gr.started.Do(func() {
		go gr.listenLoop(context.Background())
	})
}

func (gr *groupOrderRealtime) subscribe(orderNumber string, client *wsClient) (unsubscribe func()) {
	key := strings.TrimSpace(orderNumber)
	if key == "" {
		return func() {}
	}

	gr.mu.Lock()
	if gr.subs[key] == nil {
		gr.subs[key] = make(map[*wsClient]struct{})
	}
	gr.subs[key][client] = struct{}{}
	gr.mu.Unlock()

	return func() {
		gr.mu.Lock()
		clients := gr.subs[key]
		delete(clients, client)
		if len(clients) == 0 {
			delete(gr.subs, key)
		}
		gr.mu.Unlock()
	}
}

func (gr *groupOrderRealtime) broadcast(orderNumber string, message any) {
	key := strings.TrimSpace(orderNumber)
	if key == "" {
		return
	}

	gr.mu.RLock()
	clientsMap := gr.subs[key]
	clients := make([]*wsClient, 0, len(clientsMap))
	for c := range clientsMap {
		clients = append(clients, c)
	}
	gr.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			_ = c.conn.Close()
			gr.mu.Lock()
			if current := gr.subs[key]; current != nil {
				delete(current, c)
				if len(current) == 0 {
					delete(gr.subs, key)
				}
			}
			gr.mu.Unlock()
		}
	}
}

func (gr *groupOrderRealtime) listenLoop(ctx context.Context) {
	backoff := time.Second
	for {
		conn, err := gr.db.Acquire(ctx)
		if err != nil {
			if gr.logger != nil {
				gr.logger.Warn("group-order LISTEN acquire failed", zap.Error(err))
			}
			time.Sleep(backoff)
			backoff = minDuration(backoff*2, 30*time.Second)
			continue
		}

		_, err = conn.Exec(ctx, `listen group_order_updates`)
		if err != nil {
			conn.Release()
			if gr.logger != nil {
				gr.logger.Warn("group-order LISTEN failed", zap.Error(err))
			}
			time.Sleep(backoff)
			backoff = minDuration(backoff*2, 30*time.Second)
			continue
		}

		backoff = time.Second
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				break
			}
			orderNumber := strings.TrimSpace(n.Payload)
			if orderNumber == "" {
				continue
			}

			payload, found, fetchErr := handlers.FetchGroupOrderPayload(ctx, gr.db, orderNumber)
			if fetchErr != nil {
				gr.broadcast(orderNumber, map[string]any{"type": "error", "message": "failed to load group order"})
				continue
			}
			if !found {
				gr.broadcast(orderNumber, map[string]any{"type": "group-order.closed"})
				continue
			}

			gr.broadcast(orderNumber, map[string]any{"type": "group-order.state", "data": payload})
		}

		conn.Release()
		time.Sleep(backoff)
		backoff = minDuration(backoff*2, 30*time.Second)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// PublicGroupOrderWS streams group order state to invite-link viewers. The
// share token authenticates the subscription; no login is involved.
func (s *Server) PublicGroupOrderWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	token := r.URL.Query().Get("token")
	if token == "" {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "invalid request"})
		return
	}

	orderNumber, ok := utils.ParseOrderShareToken(s.Config.ShareTokenSecret, token)
	if !ok {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "group order not found"})
		return
	}

	s.groupOrderRealtime.ensureStarted()
	ctx := r.Context()
	client := &wsClient{conn: conn}
	unsubscribe := s.groupOrderRealtime.subscribe(orderNumber, client)
	defer unsubscribe()

	// Send initial full snapshot immediately.
	payload, found, fetchErr := handlers.FetchGroupOrderPayload(ctx, s.DB, orderNumber)
	if fetchErr != nil {
		_ = client.writeJSON(map[string]any{"type": "error", "message": "failed to load group order"})
		return
	}
	if !found {
		_ = client.writeJSON(map[string]any{"type": "group-order.closed"})
		return
	}
	_ = client.writeJSON(map[string]any{"type": "group-order.state", "data": payload})

	heartbeat := time.NewTicker(s.Config.WSHeartbeatInterval)
	defer heartbeat.Stop()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if err := client.writeJSON(map[string]any{"type": "ping", "at": time.Now().UTC()}); err != nil {
				return
			}
		}
	}
}
