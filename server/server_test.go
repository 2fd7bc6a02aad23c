package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/concierge/internal/profile"
	"github.com/quillhq/concierge/plugin/ai"
	"github.com/quillhq/concierge/plugin/ai/aitime"
	"github.com/quillhq/concierge/plugin/ai/chatbot"
	"github.com/quillhq/concierge/plugin/ai/form"
	"github.com/quillhq/concierge/plugin/ai/intent"
	"github.com/quillhq/concierge/plugin/ai/qa"
	"github.com/quillhq/concierge/plugin/ai/session"
	"github.com/quillhq/concierge/store"
)

func newTestServer() *Server {
	engine := chatbot.NewEngine(
		session.NewStore(),
		intent.NewService(nil),
		form.NewEngine(store.NewMockAppointmentStore(), &aitime.MockExtractor{Result: time.Now().Add(48 * time.Hour)}),
		qa.NewOrchestrator(&qa.MockRetriever{}, &ai.MockLLMService{}, nil, qa.Config{}),
	)
	return NewServer(&profile.Profile{Addr: "127.0.0.1", Port: 0, Version: "test"}, engine)
}

func postChat(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echoServer.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat(t *testing.T) {
	s := newTestServer()

	rec := postChat(t, s, `{"message": "I want to book an appointment"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var reply chatbot.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, "appointment", reply.Intent)
	assert.Contains(t, reply.Text, "name")

	// Continue the same session.
	rec = postChat(t, s, `{"session_id": "`+reply.SessionID+`", "message": "John Smith"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var next chatbot.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
	assert.Equal(t, reply.SessionID, next.SessionID)
	assert.Equal(t, "ask_phone", next.Stage)
}

func TestHandleChat_EmptyMessage(t *testing.T) {
	s := newTestServer()

	rec := postChat(t, s, `{"message": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChat_MalformedBody(t *testing.T) {
	s := newTestServer()

	rec := postChat(t, s, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEvictSession(t *testing.T) {
	s := newTestServer()

	rec := postChat(t, s, `{"message": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var reply chatbot.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+reply.SessionID, nil)
	del := httptest.NewRecorder()
	s.echoServer.ServeHTTP(del, req)
	assert.Equal(t, http.StatusNoContent, del.Code)

	// Second eviction misses.
	del = httptest.NewRecorder()
	s.echoServer.ServeHTTP(del, req)
	assert.Equal(t, http.StatusNotFound, del.Code)
}

func TestHandleInvalidateAnswerCache(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/qa/cache", nil)
	rec := httptest.NewRecorder()
	s.echoServer.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.echoServer.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
