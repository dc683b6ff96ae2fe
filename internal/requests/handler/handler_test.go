package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	communitymodels "archiva/internal/communities/models"
	communitystore "archiva/internal/communities/store"
	"archiva/internal/identity"
	"archiva/internal/platform/middleware"
	"archiva/internal/requests/handler"
	"archiva/internal/requests/models"
	"archiva/internal/requests/service"
	requeststore "archiva/internal/requests/store"
	id "archiva/pkg/domain"
)

type HandlerSuite struct {
	suite.Suite
	router    chi.Router
	svc       *service.Service
	curator   identity.Identity
	submitter identity.Identity
	community *communitymodels.Community
	open      *models.InclusionRequest
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	comms := communitystore.NewInMemory()

	curatorID := id.NewUserID()
	s.curator = identity.User(curatorID)
	s.submitter = identity.User(id.NewUserID())
	s.community = &communitymodels.Community{
		ID:       id.NewCommunityID(),
		Slug:     "astro",
		Title:    "Astronomy",
		OwnerID:  id.NewUserID(),
		Curators: []id.UserID{curatorID},
	}
	s.Require().NoError(comms.Create(context.Background(), s.community))

	s.svc = service.New(requeststore.NewInMemory(),
		service.WithCommunityStore(comms),
	)

	var err error
	s.open, err = s.svc.Submit(context.Background(), s.submitter, id.RecordID("rec-main"), s.community.ID, "fits the scope")
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	handler.New(s.svc, logger).Register(s.router)
}

func (s *HandlerSuite) do(actor identity.Identity, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if !actor.IsAnonymous() {
		req = req.WithContext(middleware.WithIdentity(req.Context(), actor))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) TestAccept() {
	path := fmt.Sprintf("/requests/%s/accept", s.open.ID)

	s.Run("curator accepts an open request", func() {
		w := s.do(s.curator, http.MethodPost, path)
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

		var resp handler.RequestResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Equal(models.StatusAccepted, resp.Status)
		s.NotNil(resp.DecidedAt)
	})

	s.Run("a decided request cannot be accepted again", func() {
		w := s.do(s.curator, http.MethodPost, path)
		s.Equal(http.StatusConflict, w.Code)
	})
}

func (s *HandlerSuite) TestDecline() {
	path := fmt.Sprintf("/requests/%s/decline", s.open.ID)

	w := s.do(s.curator, http.MethodPost, path)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp handler.RequestResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal(models.StatusDeclined, resp.Status)
}

func (s *HandlerSuite) TestDecidePermissions() {
	path := fmt.Sprintf("/requests/%s/accept", s.open.ID)

	s.Run("anonymous gets 401", func() {
		w := s.do(identity.Identity{}, http.MethodPost, path)
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("non-curator gets 403", func() {
		w := s.do(s.submitter, http.MethodPost, path)
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("unknown request gets 404", func() {
		w := s.do(s.curator, http.MethodPost, fmt.Sprintf("/requests/%s/accept", id.NewRequestID()))
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *HandlerSuite) TestGetAndList() {
	w := s.do(s.submitter, http.MethodGet, fmt.Sprintf("/requests/%s", s.open.ID))
	s.Require().Equal(http.StatusOK, w.Code)

	var resp handler.RequestResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal(s.open.ID, resp.ID)
	s.Equal("fits the scope", resp.Message)

	w = s.do(s.submitter, http.MethodGet, "/records/rec-main/requests")
	s.Require().Equal(http.StatusOK, w.Code)

	var list handler.ListResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&list))
	s.Require().Len(list.Hits, 1)
	s.Equal(s.open.ID, list.Hits[0].ID)
}
