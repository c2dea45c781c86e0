package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/sage-x-project/chat-router/logger"
	"github.com/sage-x-project/chat-router/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // observer stream, no credentials involved
	},
}

const replayBufferSize = 100

// LogServer exposes the routing event stream over /ws. New clients
// receive the most recent events before live broadcast resumes.
type LogServer struct {
	hub    *Hub
	port   int
	server *http.Server
	log    *logger.Logger

	mu     sync.Mutex
	buffer []types.RoutingEvent
}

// NewLogServer creates the event stream server for the given port.
func NewLogServer(port int, log *logger.Logger) *LogServer {
	return &LogServer{
		hub:    NewHub(),
		port:   port,
		log:    log.WithComponent("websocket"),
		buffer: make([]types.RoutingEvent, 0, replayBufferSize),
	}
}

// Start begins serving websocket upgrades. Non-blocking.
func (s *LogServer) Start() error {
	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	go func() {
		s.log.Infof("event stream listening on port %d", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("event stream server failed", err)
		}
	}()

	return nil
}

// Stop closes the server and all client connections.
func (s *LogServer) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// Publish broadcasts one routing event to all observers and records it
// in the replay buffer. Never blocks the caller.
func (s *LogServer) Publish(event types.RoutingEvent) {
	s.mu.Lock()
	if len(s.buffer) >= replayBufferSize {
		s.buffer = s.buffer[1:]
	}
	s.buffer = append(s.buffer, event)
	s.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		s.log.Warnf("failed to marshal routing event: %v", err)
		return
	}
	s.hub.Broadcast(data)
}

func (s *LogServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("failed to upgrade connection: %v", err)
		return
	}

	client := NewClient(s.hub, conn)
	s.hub.register <- client

	s.mu.Lock()
	for _, event := range s.buffer {
		if data, err := json.Marshal(event); err == nil {
			select {
			case client.send <- data:
			default:
			}
		}
	}
	s.mu.Unlock()

	go client.writePump()
	go client.readPump()
}
