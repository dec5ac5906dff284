package sync

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"bookswap/internal/logger"
)

// Server accepts raw TCP listeners for the hub.
type Server struct {
	Addr string
	Hub  *Hub

	mu sync.Mutex
	ln net.Listener
}

func NewServer(addr string, hub *Hub) *Server {
	return &Server{Addr: addr, Hub: hub}
}

// Run blocks until Close is called or the listener fails.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	log := logger.Component("tcp-sync")
	log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}

		go func(c net.Conn) {
			if err := s.Hub.Add(c); err != nil {
				log.Warn().Err(err).Str("remote", c.RemoteAddr().String()).Msg("greeting failed")
				_ = c.Close()
				return
			}
			log.Info().Str("remote", c.RemoteAddr().String()).Msg("client connected")

			defer func() {
				s.Hub.Remove(c)
				log.Info().Str("remote", c.RemoteAddr().String()).Msg("client disconnected")
			}()

			// Listeners only receive; drain whatever they send.
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
