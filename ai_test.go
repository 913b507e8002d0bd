package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteDisabledWithoutKey(t *testing.T) {
	ai := NewAIClient("https://api.groq.com/openai/v1", "", "llama-3.3-70b-versatile")

	_, err := ai.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "oi"}})

	assert.ErrorIs(t, err, ErrAIDisabled)
}

func TestCompleteReturnsTrimmedContent(t *testing.T) {
	var got completionRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  Prazer, Maria!  "}}]}`))
	}))
	defer ts.Close()

	ai := NewAIClient(ts.URL, "test-key", "llama-3.3-70b-versatile")
	reply, err := ai.Complete(context.Background(), []ChatMessage{
		{Role: "system", Content: "persona"},
		{Role: "user", Content: "Maria"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Prazer, Maria!", reply)
	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	assert.Equal(t, 0.6, got.Temperature)
	assert.Equal(t, 300, got.MaxTokens)
	require.Len(t, got.Messages, 2)
}

func TestCompleteFailsOnErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer ts.Close()

	ai := NewAIClient(ts.URL, "test-key", "m")
	_, err := ai.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "oi"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCompleteFailsOnEmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	ai := NewAIClient(ts.URL, "test-key", "m")
	_, err := ai.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "oi"}})

	require.Error(t, err)
}

func TestCompleteFailsOnBlankContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	}))
	defer ts.Close()

	ai := NewAIClient(ts.URL, "test-key", "m")
	_, err := ai.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "oi"}})

	require.Error(t, err)
}
