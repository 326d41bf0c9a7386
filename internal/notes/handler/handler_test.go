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
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"inkpad/internal/notes/service"
	"inkpad/internal/notes/store"
	id "inkpad/pkg/domain"
	"inkpad/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	router *chi.Mux
	svc    *service.Service
	owner  id.UserID
	other  id.UserID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	svc, err := service.New(store.NewInMemory())
	s.Require().NoError(err)
	s.svc = svc

	s.router = chi.NewRouter()
	New(svc, slog.Default()).Register(s.router)

	s.owner = s.newUserID()
	s.other = s.newUserID()
}

func (s *HandlerSuite) newUserID() id.UserID {
	userID, err := id.ParseUserID(uuid.NewString())
	s.Require().NoError(err)
	return userID
}

// do issues a request with an identity already attached, the way the
// session middleware would leave it.
func (s *HandlerSuite) do(method, target, body string, owner id.UserID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if !owner.IsNil() {
		ctx := requestcontext.WithIdentity(context.Background(), requestcontext.IdentityValue{UserID: owner})
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestCreateNewNote() {
	rec := s.do(http.MethodPost, "/api/create-new-note", "", s.owner)
	s.Require().Equal(http.StatusOK, rec.Code)

	var body map[string]string
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	noteID, err := id.ParseNoteID(body["noteId"])
	s.Require().NoError(err)

	note, err := s.svc.Get(context.Background(), s.owner, noteID)
	s.Require().NoError(err)
	s.Empty(note.Text)
}

func (s *HandlerSuite) TestFetchNewestNote() {
	s.Run("null when the user has no notes", func() {
		rec := s.do(http.MethodGet, "/api/fetch-newest-note", "", s.owner)
		s.Require().Equal(http.StatusOK, rec.Code)

		var body map[string]*string
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Nil(body["newestNoteId"])
	})

	s.Run("returns the newest note id", func() {
		note, err := s.svc.Create(context.Background(), s.owner)
		s.Require().NoError(err)

		rec := s.do(http.MethodGet, "/api/fetch-newest-note", "", s.owner)
		s.Require().Equal(http.StatusOK, rec.Code)

		var body map[string]*string
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Require().NotNil(body["newestNoteId"])
		s.Equal(note.ID.String(), *body["newestNoteId"])
	})
}

func (s *HandlerSuite) TestGetNote() {
	note, err := s.svc.Create(context.Background(), s.owner)
	s.Require().NoError(err)
	_, err = s.svc.UpdateText(context.Background(), s.owner, note.ID, "hello")
	s.Require().NoError(err)

	s.Run("owner can read", func() {
		rec := s.do(http.MethodGet, "/api/notes/"+note.ID.String(), "", s.owner)
		s.Require().Equal(http.StatusOK, rec.Code)

		var got map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		s.Equal("hello", got["text"])
		s.Equal(note.ID.String(), got["id"])
	})

	s.Run("another user gets 404", func() {
		rec := s.do(http.MethodGet, "/api/notes/"+note.ID.String(), "", s.other)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("malformed id gets 400", func() {
		rec := s.do(http.MethodGet, "/api/notes/not-a-uuid", "", s.owner)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestUpdateNote() {
	note, err := s.svc.Create(context.Background(), s.owner)
	s.Require().NoError(err)

	s.Run("owner can update", func() {
		rec := s.do(http.MethodPut, "/api/notes/"+note.ID.String(), `{"text":"updated"}`, s.owner)
		s.Require().Equal(http.StatusOK, rec.Code)

		got, err := s.svc.Get(context.Background(), s.owner, note.ID)
		s.Require().NoError(err)
		s.Equal("updated", got.Text)
	})

	s.Run("another user cannot update", func() {
		rec := s.do(http.MethodPut, "/api/notes/"+note.ID.String(), `{"text":"stolen"}`, s.other)
		s.Equal(http.StatusNotFound, rec.Code)

		got, err := s.svc.Get(context.Background(), s.owner, note.ID)
		s.Require().NoError(err)
		s.Equal("updated", got.Text)
	})

	s.Run("malformed body gets 400", func() {
		rec := s.do(http.MethodPut, "/api/notes/"+note.ID.String(), `{"text":`, s.owner)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestDeleteNote() {
	note, err := s.svc.Create(context.Background(), s.owner)
	s.Require().NoError(err)

	s.Run("another user cannot delete", func() {
		rec := s.do(http.MethodDelete, "/api/notes/"+note.ID.String(), "", s.other)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("owner can delete", func() {
		rec := s.do(http.MethodDelete, "/api/notes/"+note.ID.String(), "", s.owner)
		s.Equal(http.StatusNoContent, rec.Code)

		_, err := s.svc.Get(context.Background(), s.owner, note.ID)
		s.Error(err)
	})
}

func (s *HandlerSuite) TestListNotes() {
	for range 2 {
		_, err := s.svc.Create(context.Background(), s.owner)
		s.Require().NoError(err)
	}
	_, err := s.svc.Create(context.Background(), s.other)
	s.Require().NoError(err)

	rec := s.do(http.MethodGet, "/api/notes", "", s.owner)
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		Notes []json.RawMessage `json:"notes"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Len(body.Notes, 2)
}
