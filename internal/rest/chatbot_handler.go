package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"suitup-be/internal/apperr"
	"suitup-be/internal/chatbot"
	"suitup-be/internal/utils"
)

// POST /chatbot
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var input chatbot.ChatInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondError(w, r, err)
		return
	}

	reply, err := h.chatbot.Reply(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, chatbot.ChatReply{AIMessage: reply})
}

// sseWriter writes Server-Sent Event frames, sending the stream headers
// before the first frame.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func (s *sseWriter) send(ev chatbot.StreamEvent) error {
	if !s.started {
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// POST /chatbot/stream
func (h *Handler) ChatStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, r, apperr.New(apperr.KindInternal, "Streaming unsupported"))
		return
	}

	var input chatbot.ChatInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondError(w, r, err)
		return
	}

	sse := &sseWriter{w: w, flusher: flusher}
	err := h.chatbot.Stream(r.Context(), input, func(delta string) error {
		return sse.send(chatbot.StreamEvent{Content: delta})
	})

	switch {
	case err != nil && !sse.started && apperr.Is(err, apperr.KindInvalidRequest):
		respondError(w, r, err)
	case err != nil:
		if r.Context().Err() != nil || utils.IsCallerGone(err) {
			return
		}
		_ = sse.send(chatbot.StreamEvent{Error: apperr.MessageOf(err)})
	default:
		_ = sse.send(chatbot.StreamEvent{Done: true})
	}
}
