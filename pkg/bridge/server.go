// Package bridge serves the tab directory of a companion browser extension over a
// loopback WebSocket. The extension connects to the panel, announces its window, then
// answers requests and streams tab and group events.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"pkt.systems/pslog"

	"github.com/b/vertical-tabs/pkg/browser"
)

// ErrNotConnected is returned by directory calls while no extension is connected.
var ErrNotConnected = errors.New("no browser extension connected")

const (
	DefaultHost           = "127.0.0.1"
	DefaultPort           = 7685
	DefaultRequestTimeout = 5 * time.Second

	writeTimeout = 5 * time.Second
	eventBuffer  = 256
)

type Config struct {
	Host           string
	Port           int
	Token          string
	RequestTimeout time.Duration
}

// Server is a browser.TabDirectory and browser.GroupDirectory backed by the connected
// extension. The newest connection replaces any previous one.
type Server struct {
	cfg      Config
	log      pslog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conn    *extensionConn
	hello   Hello
	ready   chan struct{}
	isReady bool
	pending map[string]chan Message

	events  chan browser.Event
	done    chan struct{}
	once    sync.Once
	readers sync.WaitGroup
}

type extensionConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	closed  chan struct{}
	once    sync.Once
}

func (c *extensionConn) close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.ws.Close()
	})
}

// send writes one frame with a write deadline.
func (c *extensionConn) send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func NewServer(cfg Config, log pslog.Logger) *Server {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	s := &Server{
		cfg:     cfg,
		log:     log,
		ready:   make(chan struct{}),
		pending: make(map[string]chan Message),
		events:  make(chan browser.Event, eventBuffer),
		done:    make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Handler serves the extension endpoint at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves until ctx is done, then closes the server.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	s.log.Info("bridge listening", "addr", s.Addr())

	select {
	case <-ctx.Done():
		_ = httpServer.Close()
		<-errCh
		s.Close()
		return nil
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("bridge server: %w", err)
	}
}

// Close drops the extension connection and ends the event stream.
func (s *Server) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		close(s.done)
		conn := s.conn
		s.conn = nil
		s.mu.Unlock()
		if conn != nil {
			conn.close()
		}
		s.readers.Wait()
		close(s.events)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !isLoopbackRequest(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if !s.validateToken(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "err", err)
		return
	}
	conn := &extensionConn{ws: ws, closed: make(chan struct{})}

	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		_ = ws.Close()
		return
	default:
	}
	prev := s.conn
	s.conn = conn
	s.readers.Add(1)
	s.mu.Unlock()
	if prev != nil {
		s.log.Info("extension replaced by newer connection")
		prev.close()
	}

	go s.readLoop(conn)
}

func (s *Server) readLoop(conn *extensionConn) {
	defer s.readers.Done()
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		conn.close()
	}()

	for {
		msgType, data, err := conn.ws.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if err := s.handleTextMessage(data); err != nil {
			s.log.Debug("extension frame dropped", "err", err)
		}
	}
}

func (s *Server) handleTextMessage(data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}

	switch msg.Type {
	case TypeHello:
		var hello Hello
		if err := json.Unmarshal(msg.Payload, &hello); err != nil {
			return fmt.Errorf("decode hello: %w", err)
		}
		s.onHello(hello)
	case TypeEvent:
		ev, err := DecodeEvent(msg.Event, msg.Payload)
		if err != nil {
			return err
		}
		s.emit(ev)
	case TypeIconFailed:
		var p IconFailedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode icon_failed: %w", err)
		}
		s.emit(browser.IconFailed{Src: p.Src})
	case TypeResponse:
		s.mu.Lock()
		ch, ok := s.pending[msg.ID]
		delete(s.pending, msg.ID)
		s.mu.Unlock()
		if ok {
			ch <- msg
		}
	}
	return nil
}

// onHello records the extension's window. A reconnect may have missed events, so
// every hello after the first resets the window.
func (s *Server) onHello(hello Hello) {
	s.mu.Lock()
	first := !s.isReady
	prev := s.hello
	s.hello = hello
	if first {
		s.isReady = true
		close(s.ready)
	}
	s.mu.Unlock()

	s.log.Info("extension connected", "window", int(hello.WindowID), "groups", hello.Groups)
	if first {
		return
	}
	if prev.WindowID != hello.WindowID {
		s.log.Warn("extension reports a different window", "was", int(prev.WindowID), "now", int(hello.WindowID))
	}
	s.emit(browser.WindowReset{WindowID: prev.WindowID})
}

func (s *Server) emit(ev browser.Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Hello waits for the first extension to connect and returns its greeting.
func (s *Server) Hello(ctx context.Context) (Hello, error) {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return Hello{}, ctx.Err()
	case <-s.done:
		return Hello{}, ErrNotConnected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hello, nil
}

// Connected reports whether an extension is connected right now.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// call sends a request and decodes the response result into out, when out is not nil.
func (s *Server) call(ctx context.Context, method string, params, out any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}

	id := uuid.New().String()
	ch := make(chan Message, 1)

	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.pending[id] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	if err := conn.send(Message{Type: TypeRequest, ID: id, Method: method, Params: raw}); err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}

	timer := time.NewTimer(s.cfg.RequestTimeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if !resp.OK {
			if resp.Error == "unsupported" {
				return fmt.Errorf("%s: %w", method, browser.ErrUnsupported)
			}
			return fmt.Errorf("%s: %s", method, resp.Error)
		}
		if out == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
		return nil
	case <-conn.closed:
		return fmt.Errorf("%s: %w", method, ErrNotConnected)
	case <-timer.C:
		return fmt.Errorf("%s: timed out after %s", method, s.cfg.RequestTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
