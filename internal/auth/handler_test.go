package auth_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"carelink/internal/auth"
	"carelink/internal/auth/mocks"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/auth-mocks.go -package=mocks AuthService
type AuthHandlerSuite struct {
	suite.Suite
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) newHandler() (http.Handler, *mocks.MockAuthService) {
	ctrl := gomock.NewController(s.T())
	s.T().Cleanup(ctrl.Finish)
	mockService := mocks.NewMockAuthService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	auth.NewHandler(mockService, logger).Register(r, r)
	return r, mockService
}

func (s *AuthHandlerSuite) TestLogin() {
	router, mockService := s.newHandler()
	accountID := id.NewAccountID()

	mockService.EXPECT().
		Login(gomock.Any(), auth.LoginRequest{Username: "maria", Password: "hunter22", RememberDevice: true}).
		Return(&auth.LoginResult{
			AccessToken:     "short.jwt",
			RememberedToken: "long.jwt",
			Role:            "caregiver",
			AccountID:       accountID.String(),
		}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login", map[string]any{
		"username":       "maria",
		"password":       "hunter22",
		"rememberDevice": true,
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	testutil.AssertJSONContains(s.T(), rr, "shortLivedToken", "short.jwt")
	testutil.AssertJSONContains(s.T(), rr, "longLivedToken", "long.jwt")
	testutil.AssertJSONContains(s.T(), rr, "role", "caregiver")
	testutil.AssertJSONContains(s.T(), rr, "accountId", accountID.String())
}

func (s *AuthHandlerSuite) TestLoginOmitsEmptyLongLivedToken() {
	router, mockService := s.newHandler()

	mockService.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(&auth.LoginResult{
			AccessToken: "short.jwt",
			Role:        "caregiver",
			AccountID:   id.NewAccountID().String(),
		}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login", map[string]string{
		"username": "maria",
		"password": "hunter22",
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	body := string(testutil.ReadBody(s.T(), rr))
	s.NotContains(body, "longLivedToken")
	s.NotContains(body, "adultId")
}

func (s *AuthHandlerSuite) TestLoginUnauthorized() {
	router, mockService := s.newHandler()

	mockService.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login", map[string]string{
		"username": "maria",
		"password": "wrong",
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	testutil.AssertErrorCode(s.T(), rr, "unauthorized")
}

func (s *AuthHandlerSuite) TestLoginMalformedBody() {
	router, _ := s.newHandler()

	req := testutil.NewRequest(s.T(), http.MethodPost, "/auth/login")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}

func (s *AuthHandlerSuite) TestForgetDevice() {
	router, mockService := s.newHandler()
	accountID := id.NewAccountID()

	mockService.EXPECT().
		ForgetDevice(gomock.Any(), accountID, "long.jwt").
		Return(nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodDelete, "/auth/devices", map[string]string{
		"token": "long.jwt",
	})
	req = testutil.WithAccount(req, accountID.String(), id.RoleCaregiver)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *AuthHandlerSuite) TestForgetDeviceRequiresAuth() {
	router, _ := s.newHandler()

	req := testutil.NewJSONRequest(s.T(), http.MethodDelete, "/auth/devices", map[string]string{
		"token": "long.jwt",
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

func (s *AuthHandlerSuite) TestForgetDeviceMissingToken() {
	router, _ := s.newHandler()

	req := testutil.NewJSONRequest(s.T(), http.MethodDelete, "/auth/devices", map[string]string{})
	req = testutil.WithAccount(req, id.NewAccountID().String(), id.RoleCaregiver)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}
