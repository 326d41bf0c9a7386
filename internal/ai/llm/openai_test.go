package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"inkpad/internal/platform/config"
)

type OpenAIClientSuite struct {
	suite.Suite
	ctx context.Context
}

func TestOpenAIClientSuite(t *testing.T) {
	suite.Run(t, new(OpenAIClientSuite))
}

func (s *OpenAIClientSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *OpenAIClientSuite) newClient(handler http.HandlerFunc) *OpenAIClient {
	srv := httptest.NewServer(handler)
	s.T().Cleanup(srv.Close)
	return NewOpenAI(config.ModelConfig{
		APIKey:      "sk-test",
		Model:       "gpt-4o-mini",
		BaseURL:     srv.URL,
		MaxTokens:   256,
		Temperature: 0.7,
		Timeout:     2 * time.Second,
	})
}

func (s *OpenAIClientSuite) TestComplete() {
	messages := []Message{
		{Role: RoleSystem, Content: "instructions"},
		{Role: RoleUser, Content: "question"},
	}

	s.Run("sends configured request and returns content", func() {
		client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
			s.Equal("/chat/completions", r.URL.Path)
			s.Equal("Bearer sk-test", r.Header.Get("Authorization"))
			s.Equal("application/json", r.Header.Get("Content-Type"))

			var req openAIRequest
			s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
			s.Equal("gpt-4o-mini", req.Model)
			s.Equal(256, req.MaxTokens)
			s.InDelta(0.7, req.Temperature, 0.001)
			s.Len(req.Messages, 2)

			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"the answer"}}]}`))
		})

		content, err := client.Complete(s.ctx, messages)
		s.Require().NoError(err)
		s.Equal("the answer", content)
	})

	s.Run("non-200 status is an error", func() {
		client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
		})

		_, err := client.Complete(s.ctx, messages)
		s.Require().Error(err)
		s.Contains(err.Error(), "429")
	})

	s.Run("embedded API error is an error", func() {
		client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
		})

		_, err := client.Complete(s.ctx, messages)
		s.Require().Error(err)
		s.Contains(err.Error(), "bad model")
	})

	s.Run("no choices yields empty content without error", func() {
		client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		})

		content, err := client.Complete(s.ctx, messages)
		s.Require().NoError(err)
		s.Empty(content)
	})
}
