package core

import (
	"net"
	"sync/atomic"
)

// Server is the generic TCP lookup server.
// It depends ONLY on interfaces, not concrete implementations.
type Server struct {
	Listener net.Listener
	Handler  ConnectionHandler

	closed atomic.Bool
}

// Serve starts accepting connections. It blocks until the listener fails or
// Shutdown is called; after a Shutdown-initiated close it returns nil.
func (s *Server) Serve() error {
	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			return err
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	// Delegate the entire lifecycle to the handler
	s.Handler.HandleConnection(conn)
}

// Shutdown stops accepting new connections. In-flight handlers own their
// connections and finish independently.
func (s *Server) Shutdown() error {
	s.closed.Store(true)
	return s.Listener.Close()
}
