// Package network serves the websocket transport and the small JSON API in
// front of the session manager.
package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"treasurehunt/protocol"
	"treasurehunt/session"
	"treasurehunt/storage"
	"treasurehunt/telemetry"
)

const (
	readLimit    = 64 << 10
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
	helloWait    = 10 * time.Second
	sendQueue    = 256
)

type Config struct {
	AllowedOrigins []string            // empty allows any origin
	Results        storage.ResultStore // nil disables /api/results
	Logger         telemetry.Logger
}

type Server struct {
	manager  *session.Manager
	results  storage.ResultStore
	logger   telemetry.Logger
	upgrader websocket.Upgrader
}

func NewServer(m *session.Manager, cfg Config) *Server {
	s := &Server{
		manager: m,
		results: cfg.Results,
		logger:  telemetry.OrDefault(cfg.Logger),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return s
}

// originChecker allows requests without an Origin header (non-browser
// clients) and browsers whose origin is listed.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc("/api/results", s.handleResults)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	var sess *session.Session
	if code := r.URL.Query().Get("code"); code != "" {
		var ok bool
		if sess, ok = s.manager.Get(code); !ok {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
	}

	// Upgrade HTTP -> WebSocket
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("upgrade: %v", err)
		return
	}

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(helloWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	hello, err := readHello(conn)
	if err != nil {
		s.logger.Printf("hello from %s: %v", r.RemoteAddr, err)
		writeErrorAndClose(conn, err.Error())
		return
	}
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))

	if sess == nil {
		sess = s.manager.Create()
	}

	c := newConn(conn)
	go c.writePump()

	joined, err := sess.Join(c, hello.Name)
	if err != nil {
		s.logger.Printf("join %s: %v", sess.Code, err)
		_ = c.Close()
		return
	}
	s.logger.Printf("player %s joined %s", joined.PlayerID, joined.Code)

	s.readPump(conn, c, sess, joined.PlayerID)

	sess.Submit(session.Leave{PlayerID: joined.PlayerID})
	_ = c.Close()
	s.logger.Printf("player %s left %s", joined.PlayerID, joined.Code)
}

func readHello(conn *websocket.Conn) (protocol.Hello, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return protocol.Hello{}, fmt.Errorf("read hello: %w", err)
	}
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return protocol.Hello{}, err
	}
	if env.T != protocol.MsgHello {
		return protocol.Hello{}, fmt.Errorf("expected %q, got %q", protocol.MsgHello, env.T)
	}
	hello, err := protocol.DecodePayload[protocol.Hello](env)
	if err != nil {
		return protocol.Hello{}, err
	}
	if hello.V != protocol.V {
		return protocol.Hello{}, fmt.Errorf("unsupported protocol version %d", hello.V)
	}
	return hello, nil
}

func writeErrorAndClose(conn *websocket.Conn, message string) {
	defer conn.Close()
	b, err := protocol.Encode(protocol.MsgError, protocol.Error{Message: message})
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message))
}

func (s *Server) readPump(conn *websocket.Conn, c *wsConn, sess *session.Session, playerID string) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Printf("read %s: %v", playerID, err)
			}
			return
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			s.logger.Printf("decode from %s: %v", playerID, err)
			return
		}
		cmd, err := Command(playerID, env)
		if errors.Is(err, ErrUnknownType) {
			if b, encErr := protocol.Encode(protocol.MsgError, protocol.Error{Message: err.Error()}); encErr == nil {
				_ = c.Send(b)
			}
			continue
		}
		if err != nil {
			s.logger.Printf("decode from %s: %v", playerID, err)
			return
		}
		if !sess.Submit(cmd) {
			return
		}
	}
}

var ErrUnknownType = errors.New("unknown message type")

// Command turns a client envelope into the session command it stands for.
func Command(playerID string, env protocol.Envelope) (any, error) {
	switch env.T {
	case protocol.MsgAnchor:
		return session.Anchor{PlayerID: playerID}, nil
	case protocol.MsgTap:
		return session.Tap{PlayerID: playerID}, nil
	case protocol.MsgRestart:
		return session.Restart{PlayerID: playerID}, nil
	case protocol.MsgTracking:
		p, err := protocol.DecodePayload[protocol.Tracking](env)
		if err != nil {
			return nil, err
		}
		return session.Tracking{PlayerID: playerID, Active: p.Active}, nil
	case protocol.MsgPose:
		p, err := protocol.DecodePayload[protocol.Pose](env)
		if err != nil {
			return nil, err
		}
		return session.Pose{PlayerID: playerID, Player: p.Player.Game(), Positions: p.Positions()}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, env.T)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
