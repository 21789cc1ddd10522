package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"voxelfield/internal/engine"
)

const (
	statsInterval = 5 * time.Second
	readTimeout   = 60 * time.Second
	writeTimeout  = 5 * time.Second
)

// Server exposes the engine's chunk event stream on a websocket endpoint.
// Each connected client gets its own engine subscription; clients may steer
// the observer with OBSERVER messages.
type Server struct {
	engine *engine.Engine

	upgrader websocket.Upgrader
	seq      atomic.Uint64
	httpSrv  *http.Server
}

func NewServer(eng *engine.Engine) *Server {
	return &Server{
		engine: eng,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// ListenAndServe serves the feed until ctx is cancelled. An empty addr
// disables the feed and returns immediately.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/feed", s.wsHandler)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) wsHandler(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Handshake: must send SUBSCRIBE first.
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return
	}
	var sub SubscribeMsg
	if err := json.Unmarshal(msg, &sub); err != nil || sub.Type != msgSubscribe || sub.ProtocolVersion != Version {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"),
			time.Now().Add(time.Second))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events := s.engine.Subscribe()
	defer s.engine.Unsubscribe(events)

	// Writer goroutine: chunk events and periodic stats.
	writeErr := make(chan error, 1)
	go func() {
		hello := HelloMsg{
			Type:            msgHello,
			ProtocolVersion: Version,
			ChunkEdge:       s.engine.ChunkEdge(),
			Tiers:           s.engine.TierNames(),
		}
		if err := s.writeJSON(conn, hello); err != nil {
			writeErr <- err
			return
		}

		stats := time.NewTicker(statsInterval)
		defer stats.Stop()
		for {
			select {
			case <-ctx.Done():
				writeErr <- ctx.Err()
				return
			case ev := <-events:
				if err := s.writeJSON(conn, s.chunkEvent(ev)); err != nil {
					writeErr <- err
					return
				}
			case <-stats.C:
				obs := s.engine.Observer()
				msg := StatsMsg{
					Type:     msgStats,
					Seq:      s.seq.Add(1),
					Observer: [3]float64{obs.X, obs.Y, obs.Z},
					Chunks:   s.engine.ChunkCounts(),
				}
				if err := s.writeJSON(conn, msg); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	// Reader loop: observer position updates.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var obs ObserverMsg
		if err := json.Unmarshal(msg, &obs); err != nil || obs.Type != msgObserver {
			continue
		}
		s.engine.SetObserver(engine.Vec3{X: obs.X, Y: obs.Y, Z: obs.Z})
	}

	cancel()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))

	// Best-effort wait for the writer so it doesn't outlive conn.
	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
}

func (s *Server) chunkEvent(ev engine.Event) ChunkEventMsg {
	name := eventSpawned
	if ev.Kind == engine.EventDespawned {
		name = eventDespawned
	}
	return ChunkEventMsg{
		Type:      msgChunkEvent,
		Event:     name,
		Seq:       s.seq.Add(1),
		Tier:      ev.Tier,
		X:         ev.Coord.X,
		Y:         ev.Coord.Y,
		Z:         ev.Coord.Z,
		DebugDraw: ev.DebugDraw,
		Solid:     ev.Solid,
	}
}

func (s *Server) writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Printf("feed write: %v", err)
		return err
	}
	return nil
}
