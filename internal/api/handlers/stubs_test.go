package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"fsic-records-api-server/internal/models"
	"fsic-records-api-server/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	errNotFound = &service.Failure{Kind: service.ErrNotFound, Reason: "Establishment not found"}
	errInternal = &service.Failure{Kind: service.ErrInternal, Reason: service.GenericFailureMessage}
)

// stubEstablishments returns canned values and records what it was asked.
type stubEstablishments struct {
	err        error
	item       *models.Establishment
	list       []models.Establishment
	due        []models.DueEstablishment
	compliance string
	pdf        []byte

	gotFilter models.EstablishmentFilter
	gotID     string
	toggled   bool
	setTo     string
}

func (s *stubEstablishments) Get(_ context.Context, id string) (*models.Establishment, error) {
	s.gotID = id
	return s.item, s.err
}

func (s *stubEstablishments) List(_ context.Context, f models.EstablishmentFilter) ([]models.Establishment, error) {
	s.gotFilter = f
	return s.list, s.err
}

func (s *stubEstablishments) DueList(context.Context) ([]models.DueEstablishment, error) {
	return s.due, s.err
}

func (s *stubEstablishments) InspectionsToday(context.Context) ([]models.Establishment, error) {
	return s.list, s.err
}

func (s *stubEstablishments) Analytics(context.Context) (models.Analytics, error) {
	return models.Analytics{TotalActive: int64(len(s.list))}, s.err
}

func (s *stubEstablishments) Create(_ context.Context, in service.EstablishmentInput) (*models.Establishment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Establishment{FSICNumber: in.FSICNumber, EstablishmentName: in.EstablishmentName}, nil
}

func (s *stubEstablishments) Update(_ context.Context, id string, in service.EstablishmentInput) (*models.Establishment, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return &models.Establishment{FSICNumber: in.FSICNumber}, nil
}

func (s *stubEstablishments) Delete(_ context.Context, id string) error {
	s.gotID = id
	return s.err
}

func (s *stubEstablishments) Archive(_ context.Context, id string) error {
	s.gotID = id
	return s.err
}

func (s *stubEstablishments) Restore(_ context.Context, id string) error {
	s.gotID = id
	return s.err
}

func (s *stubEstablishments) ToggleCompliance(_ context.Context, id string) (string, error) {
	s.gotID = id
	s.toggled = true
	return s.compliance, s.err
}

func (s *stubEstablishments) SetCompliance(_ context.Context, id, value string) (string, error) {
	s.gotID = id
	s.setTo = value
	return value, s.err
}

func (s *stubEstablishments) AddRemark(_ context.Context, id, message string) (models.Remark, error) {
	s.gotID = id
	return models.Remark{Date: time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC), Message: message}, s.err
}

func (s *stubEstablishments) RecordIssuance(_ context.Context, id string) (time.Time, error) {
	s.gotID = id
	return time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC), s.err
}

func (s *stubEstablishments) Certificate(_ context.Context, id string) ([]byte, string, error) {
	s.gotID = id
	if s.err != nil {
		return nil, "", s.err
	}
	return s.pdf, "FSIC-R-0001.pdf", nil
}

type stubUsers struct {
	err   error
	users []models.User
}

func (s *stubUsers) Create(_ context.Context, in service.CreateUserInput) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.User{Username: in.Username, Password: "hash", Role: models.RoleStaff}, nil
}

func (s *stubUsers) List(context.Context) ([]models.User, error) { return s.users, s.err }

func (s *stubUsers) Get(context.Context, string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &s.users[0], nil
}

func (s *stubUsers) Update(context.Context, string, service.UpdateUserInput) error { return s.err }

func (s *stubUsers) ChangePassword(context.Context, string, string) error { return s.err }

func (s *stubUsers) Delete(context.Context, string) error { return s.err }

func do(r http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
