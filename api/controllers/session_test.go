package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiffinworks/commerce-backend/internal/session"
	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
)

type stubSessionService struct {
	session  *session.CustomerSession
	err      error
	gotIdent session.Identity
}

func (s *stubSessionService) Redeem(ctx context.Context, identity session.Identity) (*session.CustomerSession, error) {
	s.gotIdent = identity
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func postExchange(t *testing.T, svc session.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/exchange", strings.NewReader(body))
	rec := httptest.NewRecorder()
	SessionExchange(svc, nil)(rec, req)
	return rec
}

func TestSessionExchangeReturnsToken(t *testing.T) {
	svc := &stubSessionService{
		session: &session.CustomerSession{
			AccessToken: "cat-123",
			ExpiresAt:   time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC),
		},
	}

	rec := postExchange(t, svc, `{"email": "jo@example.com", "first_name": "Jo", "return_to": "/cart"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"access_token":"cat-123"`)
	assert.Equal(t, "jo@example.com", svc.gotIdent.Email)
	assert.Equal(t, "Jo", svc.gotIdent.FirstName)
	assert.Equal(t, "/cart", svc.gotIdent.ReturnTo)
}

func TestSessionExchangeRequiresValidEmail(t *testing.T) {
	rec := postExchange(t, &stubSessionService{}, `{"email": "not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionExchangeSurfacesBackendError(t *testing.T) {
	svc := &stubSessionService{err: pkgerrors.New(pkgerrors.CodeValidation, "token expired")}

	rec := postExchange(t, svc, `{"email": "jo@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
}

func TestSessionExchangeWithoutService(t *testing.T) {
	rec := postExchange(t, nil, `{"email": "jo@example.com"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
