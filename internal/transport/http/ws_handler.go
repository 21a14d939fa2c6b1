package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// WSHandler drives an interactive quiz attempt over a websocket: the client
// receives question frames and a once-per-second session timer, and sends
// answer/navigation/submit messages.
type WSHandler struct {
	service  *app.AttemptService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AttemptService) *WSHandler {
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

type answerPayload struct {
	OptionID string `json:"optionId"`
	Text     string `json:"text"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// optionView hides the correct flag from clients that have not answered yet.
type optionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type questionFrame struct {
	Index    int                     `json:"index"`
	Total    int                     `json:"total"`
	Prompt   string                  `json:"prompt"`
	Options  []optionView            `json:"options"`
	Answered bool                    `json:"answered"`
	Progress int                     `json:"progress"`
	Window   []domain.QuestionStatus `json:"window"`
}

type answeredFrame struct {
	QuestionID       string `json:"questionId"`
	Correct          bool   `json:"correct"`
	TimeTakenSeconds int    `json:"timeTakenSeconds"`
}

type timerFrame struct {
	Elapsed string `json:"elapsed"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// attempt use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	attempt, err := h.service.Start(r.Context(), quizID, userID)
	if err != nil {
		// Terminal empty state: the client routes to "quiz not found".
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Abandon(quizID, userID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	tickerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// Session timer: tick every second, but only emit a frame when the
	// formatted value actually changed. The ticker stops with the connection.
	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		last := ""
		for {
			select {
			case <-ticker.C:
				elapsed := attempt.ElapsedTotal()
				if elapsed == last {
					continue
				}
				last = elapsed
				select {
				case send <- outboundMessage[any]{Type: "timer", Payload: timerFrame{Elapsed: elapsed}}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- questionMessage(attempt)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		var done bool
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid answer payload")
				continue
			}
			answer, err := attempt.RecordAnswer(payload.OptionID, payload.Text)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "answered", Payload: answeredFrame{
				QuestionID:       answer.QuestionID,
				Correct:          answer.Correct,
				TimeTakenSeconds: answer.TimeTakenSeconds,
			}}
		case "next":
			if err := attempt.Advance(); err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- questionMessage(attempt)
		case "prev":
			attempt.Retreat()
			send <- questionMessage(attempt)
		case "submit":
			result, err := h.service.Submit(r.Context(), quizID, userID)
			if err != nil {
				msg := err.Error()
				if msg == "" {
					msg = "failed to submit quiz"
				}
				send <- errorMessage(msg)
				continue
			}
			send <- outboundMessage[any]{Type: "result", Payload: result}
			done = true
		default:
			send <- errorMessage("unsupported message type")
		}
		if done {
			break
		}
	}

	close(closeSignals)
	<-tickerDone
	close(send)
	<-writerDone
}

func questionMessage(attempt *app.Attempt) outboundMessage[any] {
	question := attempt.CurrentQuestion()
	options := make([]optionView, 0, len(question.Options))
	for _, opt := range question.Options {
		options = append(options, optionView{ID: opt.ID, Text: opt.Text})
	}
	return outboundMessage[any]{Type: "question", Payload: questionFrame{
		Index:    attempt.CurrentIndex(),
		Total:    len(attempt.Quiz().Questions),
		Prompt:   question.Prompt,
		Options:  options,
		Answered: attempt.HasAnsweredCurrent(),
		Progress: attempt.ProgressPercent(),
		Window:   attempt.JumpWindow(),
	}}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
