// Package gateway is the websocket front of the coordinator. It turns
// inbound client messages into coordinator calls and fans room events out
// to the connections attached to each room.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
	"nhooyr.io/websocket"

	"github.com/playperu/quizarena/internal/arena"
	"github.com/playperu/quizarena/internal/coordinator"
)

// Entitlements decides which subscription tiers may play multiplayer.
type Entitlements interface {
	Allowed(tier string) bool
}

// TierGate allows the listed tiers, compared case-insensitively.
type TierGate []string

func (g TierGate) Allowed(tier string) bool {
	tier = strings.ToLower(strings.TrimSpace(tier))
	return tier != "" && slices.Contains(g, tier)
}

type identity struct {
	playerID string
	name     string
	tier     string
}

// identityFrom reads the caller's identity, headers first then query
// parameters, since browsers cannot set headers on a websocket upgrade.
func identityFrom(r *http.Request) identity {
	pick := func(header, param string) string {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			return v
		}
		return strings.TrimSpace(r.URL.Query().Get(param))
	}
	return identity{
		playerID: pick("X-Player-ID", "player_id"),
		name:     pick("X-Player-Name", "name"),
		tier:     pick("X-Player-Tier", "tier"),
	}
}

type Handler struct {
	logger *slog.Logger
	coord  *coordinator.Coordinator
	hub    *Hub
	gate   Entitlements
}

func NewHandler(logger *slog.Logger, coord *coordinator.Coordinator, hub *Hub, gate Entitlements) *Handler {
	return &Handler{logger: logger, coord: coord, hub: hub, gate: gate}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.serve)
	return r
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	if id.playerID == "" {
		http.Error(w, "player identity required", http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer ws.CloseNow()
	ws.SetReadLimit(readLimit)

	c := newConn(ws, id)
	log := h.logger.With("player", c.playerID, "conn", c.id)

	if old := h.hub.register(c); old != nil {
		old.close()
		log.Info("connection replaced", "previous", old.id)
	}
	log.Debug("connection opened")

	// A reconnecting player picks up where the room is now.
	if code, ok := h.coord.RoomOf(c.playerID); ok {
		if v, err := h.coord.Room(code); err == nil {
			h.reply(c, coordinator.EventRoomUpdated, coordinator.RoomSnapshot{Room: v.Room, Players: v.Players})
		}
	}

	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return c.writeLoop(gctx) })
	g.Go(func() error { return h.readLoop(gctx, c) })
	err = g.Wait()

	h.release(c, err)
}

// release detaches c after its loops end. Only the player's current
// connection gives up the room seat.
func (h *Handler) release(c *Conn, cause error) {
	current := h.hub.unregister(c)
	c.close()
	if !current {
		c.ws.Close(websocket.StatusPolicyViolation, "replaced by a newer connection")
		return
	}
	c.ws.Close(websocket.StatusNormalClosure, "")
	h.logger.Debug("connection closed", "player", c.playerID, "conn", c.id, "error", cause)

	h.vacate(c)
}

// vacate removes c's player from their room unless a newer connection
// registered after c was unregistered.
func (h *Handler) vacate(c *Conn) {
	log := h.logger.With("player", c.playerID, "conn", c.id)
	if h.hub.connected(c.playerID) {
		log.Debug("player reconnected, keeping room seat")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.coord.Leave(ctx, c.playerID, coordinator.ReasonDisconnected); err != nil && !errors.Is(err, arena.ErrNotFound) {
		log.Error("leave after disconnect failed", "error", err)
	}
}

func (h *Handler) readLoop(ctx context.Context, c *Conn) error {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			h.fail(c, "", fmt.Errorf("%w: text frames only", arena.ErrRejected))
			continue
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			h.fail(c, "", fmt.Errorf("%w: malformed message", arena.ErrRejected))
			continue
		}
		if err := h.dispatch(ctx, c, msg); err != nil {
			h.fail(c, msg.Type, err)
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, c *Conn, msg inbound) error {
	switch msg.Type {
	case MsgRoomCreate:
		var d createRoomData
		if err := decode(msg.Data, &d); err != nil {
			return err
		}
		if err := h.entitled(c); err != nil {
			return err
		}
		_, err := h.coord.CreateRoom(ctx, c.playerID, c.name, d.Capacity, d.IsPrivate)
		return err

	case MsgRoomJoin:
		var d joinRoomData
		if err := decode(msg.Data, &d); err != nil {
			return err
		}
		if err := h.entitled(c); err != nil {
			return err
		}
		_, err := h.coord.Join(ctx, d.RoomID, c.playerID, c.name)
		return err

	case MsgRoomLeave:
		if err := h.coord.Leave(ctx, c.playerID, coordinator.ReasonLeft); err != nil {
			return err
		}
		// The leaver is detached before the broadcast.
		h.reply(c, coordinator.EventRoomLeft, coordinator.RoomLeft{PlayerID: c.playerID, Reason: coordinator.ReasonLeft})
		return nil

	case MsgPlayerReady:
		return h.coord.MarkReady(ctx, c.playerID)

	case MsgGameStart:
		return h.coord.Start(ctx, c.playerID)

	case MsgGameAnswer:
		var d answerData
		if err := decode(msg.Data, &d); err != nil {
			return err
		}
		return h.coord.SubmitAnswer(ctx, c.playerID, d.Choice, d.ResponseTimeMs)

	case MsgPing:
		h.reply(c, EventPong, nil)
		return nil

	default:
		return fmt.Errorf("%w: unknown message type %q", arena.ErrRejected, msg.Type)
	}
}

func (h *Handler) entitled(c *Conn) error {
	if h.gate == nil || h.gate.Allowed(c.tier) {
		return nil
	}
	return fmt.Errorf("%w: multiplayer requires a paid tier", arena.ErrForbidden)
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: invalid data: %v", arena.ErrRejected, err)
	}
	return nil
}

// reply queues an event for c alone, even if c has since been replaced.
func (h *Handler) reply(c *Conn, typ string, data any) {
	msg, err := json.Marshal(coordinator.Event{Type: typ, Data: data})
	if err != nil {
		h.logger.Error("encoding reply failed", "player", c.playerID, "type", typ, "error", err)
		return
	}
	if !c.enqueue(msg) {
		h.logger.Debug("reply not delivered", "player", c.playerID, "conn", c.id, "type", typ)
	}
}

func (h *Handler) fail(c *Conn, request string, err error) {
	code := arena.Code(err)
	if code == "internal" {
		h.logger.Error("request failed", "player", c.playerID, "request", request, "error", err)
	}
	h.reply(c, EventError, ErrorData{Code: code, Message: err.Error(), Request: request})
}
