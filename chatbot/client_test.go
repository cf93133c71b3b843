package chatbot_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/korylprince/library-desk-server/chatbot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIClientChat(t *testing.T) {
	var got chatbot.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "c1", "choices": [{"index": 0, "finish_reason": "tool_calls", "message": {"role": "assistant", "content": "",
			"tool_calls": [{"id": "t1", "type": "function", "function": {"name": "inventory_summary_tool", "arguments": "{\"threshold\": 3}"}}]}}]}`))
	}))
	defer srv.Close()

	client := chatbot.NewAIClient(srv.URL, "deepseek-chat", "secret", time.Second)
	resp, err := client.Chat(context.Background(), []chatbot.Message{{Role: chatbot.RoleUser, Content: "summary"}}, chatbot.GetTools())
	require.NoError(t, err)

	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, "auto", got.ToolChoice)
	assert.Equal(t, 0.1, got.Temperature)
	assert.Equal(t, 1000, got.MaxTokens)
	assert.Len(t, got.Tools, 6)

	require.Len(t, resp.Choices, 1)
	require.Len(t, resp.Choices[0].Message.ToolCalls, 1)
	assert.Equal(t, chatbot.ToolInventorySummary, resp.Choices[0].Message.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"threshold": 3}`, resp.Choices[0].Message.ToolCalls[0].Function.Arguments)
}

func TestAIClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/limited":
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		case "/garbage":
			w.Write([]byte("<html>"))
		}
	}))
	defer srv.Close()

	_, err := chatbot.NewAIClient(srv.URL+"/limited", "m", "", time.Second).Chat(context.Background(), nil, nil)
	var apiErr *chatbot.APIError
	require.True(t, errors.As(err, &apiErr), err)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "rate limited")

	_, err = chatbot.NewAIClient(srv.URL+"/garbage", "m", "", time.Second).Chat(context.Background(), nil, nil)
	require.Error(t, err)
	assert.False(t, errors.As(err, &apiErr))
}
