package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	dErrors "inkpad/pkg/domain-errors"
)

type stubService struct {
	answer       string
	err          error
	gotQuestions []string
	gotAnswers   []string
}

func (s *stubService) Ask(_ context.Context, questions, priorAnswers []string) (string, error) {
	s.gotQuestions = questions
	s.gotAnswers = priorAnswers
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

type HandlerSuite struct {
	suite.Suite
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) post(svc Service, body string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	New(svc, slog.Default()).Register(router)

	req := httptest.NewRequest(http.MethodPost, "/api/ask-ai", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestAsk() {
	s.Run("passes questions and answers through and returns the answer", func() {
		svc := &stubService{answer: "<p>milk</p>"}
		rec := s.post(svc, `{"questions":["q1","q2"],"priorAnswers":["a1"]}`)

		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal([]string{"q1", "q2"}, svc.gotQuestions)
		s.Equal([]string{"a1"}, svc.gotAnswers)

		var body map[string]string
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Equal("<p>milk</p>", body["answer"])
	})

	s.Run("malformed body gets 400", func() {
		rec := s.post(&stubService{}, `{"questions":`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error codes map to statuses", func() {
		cases := []struct {
			err    error
			status int
		}{
			{dErrors.New(dErrors.CodeUnauthorized, "log in"), http.StatusUnauthorized},
			{dErrors.New(dErrors.CodeRateLimited, "wait"), http.StatusTooManyRequests},
			{dErrors.New(dErrors.CodeInvalidInput, "bad"), http.StatusBadRequest},
			{dErrors.New(dErrors.CodeUpstream, "model down"), http.StatusBadGateway},
		}
		for _, tc := range cases {
			rec := s.post(&stubService{err: tc.err}, `{"questions":["q"]}`)
			s.Equal(tc.status, rec.Code, "error %v", tc.err)
		}
	})

	s.Run("upstream detail is not echoed", func() {
		rec := s.post(&stubService{err: dErrors.New(dErrors.CodeUpstream, "api key sk-123 invalid")}, `{"questions":["q"]}`)
		s.Equal(http.StatusBadGateway, rec.Code)
		s.NotContains(rec.Body.String(), "sk-123")
	})
}
