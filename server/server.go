// Package server exposes sizing runs over a websocket.
package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"ductsize/calculator"
	"ductsize/model"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	cfg      calculator.Config
}

func NewServer(addr string, upgrader websocket.Upgrader, cfg calculator.Config) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		cfg:      cfg,
	}
}

// serveWs handles websocket requests from the peer. Each connection gets its own Sizer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithField("error", err).Warn("upgrade failed")
		return
	}
	hub := NewHub(calculator.NewSizer(s.cfg), conn)
	defer close(hub.done)
	defer conn.Close()

	go hub.handleRequest()
	go hub.handleResponse()
	log.WithField("remote", conn.RemoteAddr().String()).Info("client connected")
	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			log.WithField("error", err).Info("client gone")
			return
		}
		hub.msg <- msg
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	return mux
}

func (s *Server) Serve() error {
	log.WithField("addr", s.addr).Info("listening")
	return http.ListenAndServe(s.addr, s.Handler())
}
