package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zaynkorai/research-agents-gograph/agent"
)

type fakeRunner struct {
	questions []string
	result    agent.Result
	err       error
}

func (f *fakeRunner) Run(ctx context.Context, q string) (agent.Result, error) {
	f.questions = append(f.questions, q)
	return f.result, f.err
}

func postChat(t *testing.T, runner Runner, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := NewServer(runner, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestChatReturnsFinalReport(t *testing.T) {
	runner := &fakeRunner{result: agent.Result{
		RunID:   "run-1",
		Outcome: agent.OutcomeFinalReport,
		Answer:  "The capital of France is Paris.",
	}}

	rec := postChat(t, runner, `{"messages":[
		{"role":"user","content":"hello"},
		{"role":"assistant","content":"hi"},
		{"role":"user","content":"What is the capital of France?"}
	]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run-1", rec.Header().Get("X-Run-ID"))
	assert.Equal(t, "The capital of France is Paris.", decodeBody[ChatResponse](t, rec).Response)
	assert.Equal(t, []string{"What is the capital of France?"}, runner.questions)
}

func TestChatDidNotTerminate(t *testing.T) {
	runner := &fakeRunner{result: agent.Result{RunID: "run-2", Outcome: agent.OutcomeDidNotTerminate}}

	rec := postChat(t, runner, `{"messages":[{"role":"user","content":"q"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, agent.NotTerminatedMessage, decodeBody[ChatResponse](t, rec).Response)
}

func TestChatBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"malformed", `{"messages":`, ""},
		{"empty", `{"messages":[]}`, "No messages provided"},
		{"no user turn", `{"messages":[{"role":"assistant","content":"hi"}]}`, "No user message found in history"},
		{"blank user turn", `{"messages":[{"role":"user","content":"  "}]}`, "No user message found in history"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			rec := postChat(t, runner, tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, decodeBody[ErrorResponse](t, rec).Detail)
			}
			assert.Empty(t, runner.questions)
		})
	}
}

func TestChatRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"routing", &agent.RoutingError{Value: "unknown_role"}, http.StatusBadGateway},
		{"transport", &agent.TransportError{Role: agent.RolePlanner, Err: errors.New("refused")}, http.StatusBadGateway},
		{"other", agent.ErrNoReport, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: agent.Result{RunID: "run-3"}, err: tt.err}
			rec := postChat(t, runner, `{"messages":[{"role":"user","content":"q"}]}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "run-3", rec.Header().Get("X-Run-ID"))
			assert.Equal(t, tt.err.Error(), decodeBody[ErrorResponse](t, rec).Detail)
		})
	}
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(&fakeRunner{}, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	srv.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
