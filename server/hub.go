package server

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"ductsize/calculator"
	"ductsize/model"
)

// 消息类型
const (
	TypeNetwork    = "network"
	TypeNetworkSet = "networkSet"
	TypeStart      = "start"
	TypeResult     = "result"
	TypeStop       = "stop"
	TypeStopped    = "stopped"
	TypeError      = "error"
)

// response is one queued reply. A reply carrying a network is sized before it is sent.
type response struct {
	msg  model.Msg
	run  *model.Network
	stop bool
}

// Hub serves one websocket connection: requests are read into msg, replies
// are written only by handleResponse, in request order.
type Hub struct {
	sizer *calculator.Sizer
	conn  *websocket.Conn
	// request
	msg chan model.Msg
	// response
	reply chan response

	done chan struct{}
}

func NewHub(sizer *calculator.Sizer, conn *websocket.Conn) *Hub {
	return &Hub{
		sizer: sizer,
		conn:  conn,
		msg:   make(chan model.Msg, 10),
		reply: make(chan response, 10),
		done:  make(chan struct{}),
	}
}

func (h *Hub) handleResponse() {
	for {
		select {
		case r := <-h.reply:
			if r.run != nil {
				r.msg = h.run(r.run)
			}
			h.write(r.msg)
			if r.stop {
				_ = h.conn.Close()
				return
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleRequest() {
	// 当前连接上最近一次收到的管网
	var current *model.Network
	for {
		select {
		case msg := <-h.msg:
			switch msg.Type {
			case TypeNetwork:
				n := &model.Network{}
				if err := json.Unmarshal([]byte(msg.Content), n); err != nil {
					h.respond(response{msg: errorMsg(fmt.Errorf("network: %v: %w", err, model.ErrInvalidNetwork))})
					continue
				}
				current = n
				h.respond(response{msg: model.Msg{
					Type:    TypeNetworkSet,
					Content: fmt.Sprintf("%d fittings", len(n.Fittings)),
				}})
			case TypeStart:
				if current == nil {
					h.respond(response{msg: errorMsg(fmt.Errorf("start before network: %w", model.ErrInvalidNetwork))})
					continue
				}
				h.respond(response{run: current})
			case TypeStop:
				h.respond(response{msg: model.Msg{Type: TypeStopped, Content: "stopped"}, stop: true})
			default:
				log.WithField("type", msg.Type).Warn("no such type")
				h.respond(response{msg: model.Msg{Type: TypeError, Content: "no such type: " + msg.Type}})
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) respond(r response) {
	select {
	case h.reply <- r:
	case <-h.done:
	}
}

// run sizes n and packs the annotated network as the reply.
func (h *Hub) run(n *model.Network) model.Msg {
	sum, err := h.sizer.Run(n)
	if err != nil {
		return errorMsg(err)
	}
	data, err := json.Marshal(n)
	if err != nil {
		return errorMsg(err)
	}
	log.WithFields(log.Fields{
		"title":      n.Title,
		"iterations": sum.Iterations,
	}).Info("result pushed")
	return model.Msg{Type: TypeResult, Content: string(data)}
}

func (h *Hub) write(reply model.Msg) {
	if err := h.conn.WriteJSON(&reply); err != nil {
		log.WithFields(log.Fields{
			"type":  reply.Type,
			"error": err,
		}).Warn("write failed")
	}
}

func errorMsg(err error) model.Msg {
	log.WithField("error", err).Warn("request failed")
	return model.Msg{Type: TypeError, Content: err.Error()}
}
