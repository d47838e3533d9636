package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"deepref-rcs-service/internal/app"
	"deepref-rcs-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.RcsService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RcsService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type scorePayload struct {
	SubmissionID string `json:"submissionId"`
}

type recalculatePayload struct {
	RequesterID string `json:"requesterId"`
}

type scoreResult struct {
	SubmissionID string           `json:"submissionId"`
	Result       domain.RcsResult `json:"result"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// scoring use cases. Clients request single-submission scores or kick off
// batch recalculations; batch progress snapshots stream to every
// connected client.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	progress, cancel := h.service.SubscribeProgress()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	progressDone := make(chan struct{})
	var jobs sync.WaitGroup

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(progressDone)
		for {
			select {
			case snapshot, ok := <-progress:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "batchProgress", Payload: snapshot}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "score":
			var payload scorePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.SubmissionID == "" {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid score payload"}}
				continue
			}
			result, err := h.service.ScoreSubmission(r.Context(), payload.SubmissionID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "scoreResult", Payload: scoreResult{
				SubmissionID: payload.SubmissionID,
				Result:       result,
			}}
		case "recalculate":
			var payload recalculatePayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid recalculate payload"}}
					continue
				}
			}
			jobs.Add(1)
			go func(scope domain.PopulationScope) {
				defer jobs.Done()
				// The batch keeps running even if this client goes away.
				report, err := h.service.RecalculateBatch(context.Background(), scope)
				var msg outboundMessage[any]
				if err != nil {
					msg = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				} else {
					msg = outboundMessage[any]{Type: "batchReport", Payload: report}
				}
				select {
				case send <- msg:
				case <-closeSignals:
				}
			}(domain.PopulationScope{RequesterID: payload.RequesterID})
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-progressDone
	jobs.Wait()
	close(send)
	<-writerDone
}
