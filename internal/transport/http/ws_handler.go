package http

import (
	"encoding/json"
	"net/http"

	"artquiz-service/internal/app"
	"artquiz-service/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
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

type answerPayload struct {
	Answer string `json:"answer"`
}

// questionPayload is the current question plus "question i of n" counters.
type questionPayload struct {
	SessionID string          `json:"sessionId"`
	Number    int             `json:"number"`
	Total     int             `json:"total"`
	Score     int             `json:"score"`
	Question  domain.Question `json:"question"`
}

type completedPayload struct {
	SessionID  string          `json:"sessionId"`
	Completion *app.Completion `json:"completion,omitempty"`
	Score      int             `json:"score"`
	Total      int             `json:"total"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades to a websocket and drives one quiz session over it. The client sends
// {"type":"answer","payload":{"answer":key}} and {"type":"next"}; the server pushes question,
// answerResult, completed, progress and error messages.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	state, err := h.service.Start(r.Context(), quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	sessionID := state.SessionID
	defer func() {
		// no-op once the session completed
		h.service.Abandon(r.Context(), sessionID)
	}()

	updates, cancel := h.service.SubscribeProgress()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.String("session_id", sessionID), zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "progress", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- questionMessage(state)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid answer payload")
				continue
			}
			res, err := h.service.SubmitAnswer(r.Context(), sessionID, payload.Answer)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: res}
		case "next":
			next, err := h.service.Advance(r.Context(), sessionID)
			if err != nil && !next.Completed {
				send <- errorMessage(err.Error())
				continue
			}
			if err != nil {
				// progress save failed; the run still finished
				h.logger.Error("complete quiz", zap.String("session_id", sessionID), zap.Error(err))
			}
			if next.Completed {
				send <- outboundMessage[any]{Type: "completed", Payload: completedPayload{
					SessionID:  next.SessionID,
					Completion: next.Completion,
					Score:      next.Score,
					Total:      next.Total,
				}}
				continue
			}
			send <- questionMessage(next)
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func questionMessage(state app.SessionState) outboundMessage[any] {
	if state.Question == nil {
		return errorMessage("no current question")
	}
	return outboundMessage[any]{Type: "question", Payload: questionPayload{
		SessionID: state.SessionID,
		Number:    state.Index + 1,
		Total:     state.Total,
		Score:     state.Score,
		Question:  publicQuestion(*state.Question),
	}}
}

// publicQuestion strips the answer key before a question goes on the wire.
func publicQuestion(q domain.Question) domain.Question {
	q.CorrectAnswer = ""
	return q
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
