package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shopmena/helpdesk/internal/auth"
	"github.com/shopmena/helpdesk/internal/config"
	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/observability"
	"github.com/shopmena/helpdesk/internal/repository"
)

// Gateway exposes the change feed to browser clients over websocket.
// Clients authenticate with a JWT, send one subscribe frame naming a
// scope, then receive change events as JSON frames. Row visibility is
// enforced here: customers only ever see their own tickets and never
// internal notes, regardless of what the client asks for.
type Gateway struct {
	cfg      config.RealtimeConfig
	tokens   *auth.TokenManager
	tickets  repository.TicketRepository
	broker   *Broker
	logger   *zap.Logger
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

// NewGateway constructs the gateway around a local broker.
func NewGateway(cfg config.RealtimeConfig, tokens *auth.TokenManager, tickets repository.TicketRepository, broker *Broker, logger *zap.Logger, metrics *observability.Metrics) *Gateway {
	return &Gateway{
		cfg:     cfg,
		tokens:  tokens,
		tickets: tickets,
		broker:  broker,
		logger:  logger,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler serving /ws.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleWS)
	return mux
}

// ListenAndServe runs the gateway until ctx is cancelled.
func (g *Gateway) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:    g.cfg.Addr(),
		Handler: g.Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	claims, err := g.tokens.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	g.metrics.WSConnOpened()
	defer func() {
		g.metrics.WSConnClosed()
		_ = conn.Close()
	}()

	var scope Scope
	if err := conn.ReadJSON(&scope); err != nil {
		g.writeError(conn, "malformed subscribe frame")
		return
	}
	if err := g.authorizeScope(r.Context(), claims, &scope); err != nil {
		g.writeError(conn, err.Error())
		return
	}

	send := make(chan ChangeEvent, g.cfg.SendBufferSize)
	handlers := Handlers{
		OnInsert: func(ev ChangeEvent) { g.enqueue(claims, send, ev) },
		OnUpdate: func(ev ChangeEvent) { g.enqueue(claims, send, ev) },
		OnDelete: func(ev ChangeEvent) { g.enqueue(claims, send, ev) },
	}
	sub, err := g.broker.Subscribe(r.Context(), scope, handlers)
	if err != nil {
		g.writeError(conn, err.Error())
		return
	}
	defer sub.Close()

	done := make(chan struct{})
	go g.writeLoop(conn, send, done)

	// Reader loop exists only to detect the peer going away; inbound
	// frames after subscribe are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			close(done)
			return
		}
	}
}

func (g *Gateway) writeLoop(conn *websocket.Conn, send <-chan ChangeEvent, done <-chan struct{}) {
	ticker := time.NewTicker(g.cfg.PingPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(g.cfg.WriteWait()))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(g.cfg.WriteWait()))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue applies role filtering and hands the event to the writer. A
// full send buffer drops the event: a silent delivery gap the client
// recovers from by refetching, same as any transport gap.
func (g *Gateway) enqueue(claims *auth.Claims, send chan<- ChangeEvent, ev ChangeEvent) {
	if !g.visible(claims, ev) {
		return
	}
	select {
	case send <- ev:
	default:
		g.logger.Warn("send buffer full, dropping event",
			zap.String("subject", claims.SubjectID),
			zap.String("channel", ev.Channel))
	}
}

func (g *Gateway) authorizeScope(ctx context.Context, claims *auth.Claims, scope *Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if claims.Role == domain.RoleAdmin {
		return nil
	}
	switch scope.Kind {
	case ScopeNotifications:
		// A user can only follow their own feed.
		if scope.UserID != claims.SubjectID {
			return errForbidden
		}
	case ScopeTicket:
		ticket, err := g.tickets.GetByID(ctx, scope.TicketID)
		if err != nil {
			return errForbidden
		}
		if ticket.RequesterID != claims.SubjectID {
			return errForbidden
		}
	}
	return nil
}

// visible filters individual events for non-admin subscribers: only
// their own ticket rows, and never internal notes.
func (g *Gateway) visible(claims *auth.Claims, ev ChangeEvent) bool {
	if claims.Role == domain.RoleAdmin {
		return true
	}
	switch ev.Kind {
	case KindTicket:
		newRow, oldRow, err := ev.DecodeTicket()
		if err != nil {
			return false
		}
		row := newRow
		if row == nil {
			row = oldRow
		}
		return row != nil && row.RequesterID == claims.SubjectID
	case KindMessage:
		msg, err := ev.DecodeMessage()
		if err != nil || msg == nil {
			return false
		}
		return !msg.IsInternal
	default:
		return true
	}
}

func (g *Gateway) writeError(conn *websocket.Conn, message string) {
	payload, _ := json.Marshal(map[string]string{"error": message})
	_ = conn.SetWriteDeadline(time.Now().Add(g.cfg.WriteWait()))
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}

var errForbidden = &scopeError{"scope not permitted for this account"}

type scopeError struct{ msg string }

func (e *scopeError) Error() string { return e.msg }
