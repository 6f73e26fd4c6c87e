package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frudas24/screenoff/internal/logx"
	"github.com/frudas24/screenoff/internal/session"
)

// ErrAlreadyRunning reports that another instance owns the control address.
var ErrAlreadyRunning = errors.New("screenoff is already running")

// Dispatcher delivers an event to the session goroutine and waits for its result.
type Dispatcher func(ctx context.Context, ev session.Event) (session.Result, error)

// Server handles the loopback control channel.
type Server struct {
	mu       sync.Mutex
	upgrader websocket.Upgrader
	dispatch Dispatcher
	conn     *websocket.Conn
}

// NewServer creates a control server over dispatch.
func NewServer(dispatch Dispatcher) *Server {
	return &Server{
		dispatch: dispatch,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     sameHostOrigin,
		},
	}
}

// RegisterRoutes wires API and websocket handlers onto the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/monitors", s.handleMonitors)
	mux.Handle("/ws/control", s)
}

// ServeHTTP upgrades the connection and processes control messages.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if err := s.acceptConn(conn); err != nil {
		_ = conn.WriteJSON(Message{T: "error", Error: err.Error()})
		_ = conn.Close()
		return
	}
	defer s.cleanupConn(conn)
	conn.SetCloseHandler(func(code int, _ string) error {
		// Free the slot before the echo reaches the client so it can reconnect at once.
		s.releaseConn(conn)
		msg := websocket.FormatCloseMessage(code, "")
		return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		logx.Debugf("control: command %q id=%q", msg.T, msg.ID)
		if err := conn.WriteJSON(s.handleMessage(r.Context(), msg)); err != nil {
			return
		}
	}
}

// acceptConn ensures only one active control connection exists.
func (s *Server) acceptConn(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return fmt.Errorf("control connection already active")
	}
	s.conn = conn
	return nil
}

// releaseConn clears the active connection slot if conn holds it.
func (s *Server) releaseConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
}

// cleanupConn clears the active connection when closed.
func (s *Server) cleanupConn(conn *websocket.Conn) {
	s.releaseConn(conn)
	_ = conn.Close()
}

// handleMessage dispatches a single command and builds its reply.
func (s *Server) handleMessage(ctx context.Context, msg Message) Message {
	ev, err := EventFor(msg)
	if err != nil {
		return Message{T: "error", Error: err.Error()}
	}
	res, err := s.dispatch(ctx, ev)
	if err != nil {
		return Message{T: "error", Error: err.Error()}
	}
	reply := StateMessage(res.Snapshot)
	if res.Err != nil {
		reply.Error = res.Err.Error()
	}
	return reply
}

// handleState returns the current session snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	res, ok := s.query(w, r)
	if !ok {
		return
	}
	writeJSON(w, StateMessage(res.Snapshot))
}

// handleMonitors returns the enumerated outputs after a fresh scan.
func (s *Server) handleMonitors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	res, err := s.dispatch(r.Context(), session.Event{Kind: session.EventRefresh})
	if err != nil {
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, Outputs(res.Snapshot))
}

// query dispatches a state event for a GET request.
func (s *Server) query(w http.ResponseWriter, r *http.Request) (session.Result, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return session.Result{}, false
	}
	res, err := s.dispatch(r.Context(), session.Event{Kind: session.EventState})
	if err != nil {
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return session.Result{}, false
	}
	return res, true
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("control: writing response: %v", err)
	}
}

// sameHostOrigin accepts non-browser clients and pages served from the same host.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host
}

// Listen binds addr. A bind failure on an address that answers connections
// means another instance is running.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err == nil {
		return ln, nil
	}
	if conn, dialErr := net.DialTimeout("tcp", addr, time.Second); dialErr == nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w (control address %s in use)", ErrAlreadyRunning, addr)
	}
	return nil, fmt.Errorf("binding control address %s: %w", addr, err)
}

// Serve runs an HTTP server for s on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()
	log.Printf("control: listening on %s", ln.Addr())

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeConn()
	return server.Shutdown(shutdownCtx)
}

// closeConn drops the active websocket, which Shutdown does not track.
func (s *Server) closeConn() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}
