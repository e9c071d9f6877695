package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/akshaykn0797/menudex/internal/domain"
)

type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func chatServer(t *testing.T, content string, capture *openaiChatRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Fatalf("decode request: %v", err)
			}
		}

		resp := chatResponse{ID: "chatcmpl-1", Object: "chat.completion", Model: "test-model"}
		resp.Choices = append(resp.Choices, struct {
			Index   int `json:"index"`
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		}{FinishReason: "stop"})
		resp.Choices[0].Message.Role = "assistant"
		resp.Choices[0].Message.Content = content
		resp.Usage.PromptTokens = 120
		resp.Usage.CompletionTokens = 30
		resp.Usage.TotalTokens = 150

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

// openaiChatRequest captures the fields the generator must set.
type openaiChatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func newTestGenerator(url string) *Generator {
	return NewGenerator(&GeneratorConfig{
		APIKey:      "test-key",
		BaseURL:     url + "/v1",
		Model:       "test-model",
		Temperature: 0.0,
		MaxTokens:   256,
		Logger:      zap.NewNop(),
	})
}

func TestGenerate_HappyPath(t *testing.T) {
	var captured openaiChatRequest
	server := chatServer(t, `{"items":[]}`, &captured)

	gen := newTestGenerator(server.URL)

	result, err := gen.Generate(context.Background(), domain.GenerationRequest{
		Instruction: "answer from the menu",
		Context:     `{"category":"Bowls"}`,
		Query:       "list bowls",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Text != `{"items":[]}` {
		t.Errorf("unexpected text: %s", result.Text)
	}
	if result.TotalTokens != 150 {
		t.Errorf("unexpected total tokens: %d", result.TotalTokens)
	}

	if captured.Model != "test-model" {
		t.Errorf("unexpected model: %s", captured.Model)
	}
	if captured.ResponseFormat.Type != "json_object" {
		t.Errorf("response format not pinned to JSON: %s", captured.ResponseFormat.Type)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "answer from the menu" {
		t.Errorf("unexpected system message: %+v", captured.Messages[0])
	}
	if !strings.Contains(captured.Messages[1].Content, `{"category":"Bowls"}`) {
		t.Errorf("user message missing context: %s", captured.Messages[1].Content)
	}
	if !strings.Contains(captured.Messages[1].Content, "User Query: list bowls") {
		t.Errorf("user message missing query: %s", captured.Messages[1].Content)
	}
}

func TestGenerate_EmptyContext(t *testing.T) {
	var captured openaiChatRequest
	server := chatServer(t, `{"message":"the menu is empty"}`, &captured)

	gen := newTestGenerator(server.URL)

	_, err := gen.Generate(context.Background(), domain.GenerationRequest{
		Instruction: "answer from the menu",
		Query:       "anything?",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(captured.Messages[1].Content, "(empty)") {
		t.Errorf("empty context not marked: %s", captured.Messages[1].Content)
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	}))
	t.Cleanup(server.Close)

	gen := newTestGenerator(server.URL)

	_, err := gen.Generate(context.Background(), domain.GenerationRequest{Query: "q"})
	if !errors.Is(err, domain.ErrGenerationProvider) {
		t.Fatalf("expected ErrGenerationProvider, got %v", err)
	}
}

func TestGenerate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`))
	}))
	t.Cleanup(server.Close)

	gen := newTestGenerator(server.URL)

	_, err := gen.Generate(context.Background(), domain.GenerationRequest{Query: "q"})
	if !errors.Is(err, domain.ErrGenerationProvider) {
		t.Fatalf("expected ErrGenerationProvider, got %v", err)
	}
}
