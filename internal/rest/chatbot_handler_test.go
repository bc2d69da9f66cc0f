package rest

import (
	"errors"
	"net/http"
	"testing"

	"suitup-be/internal/apperr"
	"suitup-be/internal/chatbot"
	"suitup-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestChat(t *testing.T) {
	t.Run("Reply", func(t *testing.T) {
		env := newTestEnv()
		input := chatbot.ChatInput{
			Message:             "Any navy suits?",
			ConversationHistory: []chatbot.Message{{Role: chatbot.RoleUser, Content: "hi"}},
		}
		env.chatbot.On("Reply", mock.Anything, input).Return("Try the Hugo navy suit.", nil)

		rec := env.do(jsonRequest(http.MethodPost, "/chatbot",
			`{"message":"Any navy suits?","conversationHistory":[{"role":"user","content":"hi"}]}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"aiMessage":"Try the Hugo navy suit."}`, rec.Body.String())
	})

	t.Run("Provider failure", func(t *testing.T) {
		env := newTestEnv()
		env.chatbot.On("Reply", mock.Anything, mock.Anything).
			Return("", apperr.Wrap(apperr.KindUpstreamFailure, "Sorry, try again.", errors.New("openai error (status 500)")))

		rec := env.do(jsonRequest(http.MethodPost, "/chatbot", `{"message":"hello"}`))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "Sorry, try again.", decodeBody(t, rec)["message"])
		assert.NotContains(t, rec.Body.String(), "status 500")
	})
}

func TestChatStream(t *testing.T) {
	t.Run("Deltas then done", func(t *testing.T) {
		env := newTestEnv()
		env.chatbot.On("Stream", mock.Anything, chatbot.ChatInput{Message: "hello"}).
			Return([]string{"Hel", "lo!"}, nil)

		rec := env.do(jsonRequest(http.MethodPost, "/chatbot/stream", `{"message":"hello"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
		assert.Equal(t,
			"data: {\"content\":\"Hel\"}\n\n"+
				"data: {\"content\":\"lo!\"}\n\n"+
				"data: {\"done\":true}\n\n",
			rec.Body.String())
		assert.True(t, rec.Flushed)
	})

	t.Run("Provider failure mid-stream", func(t *testing.T) {
		env := newTestEnv()
		env.chatbot.On("Stream", mock.Anything, mock.Anything).
			Return([]string{"Hel"}, apperr.Wrap(apperr.KindUpstreamFailure, "Sorry, try again.", errors.New("reset")))

		rec := env.do(jsonRequest(http.MethodPost, "/chatbot/stream", `{"message":"hello"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t,
			"data: {\"content\":\"Hel\"}\n\n"+
				"data: {\"error\":\"Sorry, try again.\"}\n\n",
			rec.Body.String())
	})

	t.Run("Provider failure before any delta", func(t *testing.T) {
		env := newTestEnv()
		env.chatbot.On("Stream", mock.Anything, mock.Anything).
			Return([]string{}, apperr.Wrap(apperr.KindUpstreamFailure, "Sorry, try again.", errors.New("401")))

		rec := env.do(jsonRequest(http.MethodPost, "/chatbot/stream", `{"message":"hello"}`))

		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
		assert.Equal(t, "data: {\"error\":\"Sorry, try again.\"}\n\n", rec.Body.String())
	})

	t.Run("Client gone mid-stream", func(t *testing.T) {
		env := newTestEnv()
		env.chatbot.On("Stream", mock.Anything, mock.Anything).
			Return([]string{"Hel"}, utils.CallerGone(errors.New("write: broken pipe")))

		rec := env.do(jsonRequest(http.MethodPost, "/chatbot/stream", `{"message":"hello"}`))

		assert.Equal(t, "data: {\"content\":\"Hel\"}\n\n", rec.Body.String())
	})

	t.Run("Empty message", func(t *testing.T) {
		env := newTestEnv()
		env.chatbot.On("Stream", mock.Anything, mock.Anything).
			Return([]string{}, apperr.Invalid("No message provided."))

		rec := env.do(jsonRequest(http.MethodPost, "/chatbot/stream", `{"message":""}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No message provided.", decodeBody(t, rec)["message"])
	})
}
