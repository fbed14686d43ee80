package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sponsor-deliverables-api/internal/constants"
	"github.com/yukikurage/sponsor-deliverables-api/internal/dto"
	apierrors "github.com/yukikurage/sponsor-deliverables-api/internal/errors"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/services"
)

func TestAuthHandler_Signup(t *testing.T) {
	env := setupTestEnv(t, nil)

	payload := map[string]string{
		"email":             "new@example.com",
		"password":          "supersecret",
		"full_name":         "New Person",
		"organization_name": "Summit Crew",
	}
	w := env.do(http.MethodPost, "/api/auth/signup", payload, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	response := decode[dto.ProfileDTO](t, w)
	require.Equal(t, "new@example.com", response.Email)
	require.Equal(t, models.RoleAdmin, response.Role)
	require.NotNil(t, response.OrganizationID)

	w = env.do(http.MethodPost, "/api/auth/signup", payload, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	payload["email"] = "other@example.com"
	payload["password"] = "short"
	w = env.do(http.MethodPost, "/api/auth/signup", payload, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "at least 8 characters")
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	env := setupTestEnv(t, nil)

	_, err := env.authService.Signup(context.Background(), services.SignupInput{
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := env.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")

	w = env.do(http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "existing@example.com", decode[dto.ProfileDTO](t, w).Email)

	w = env.do(http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/auth/me", nil, w.Result().Cookies())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_LoginRejectsBadPassword(t *testing.T) {
	env := setupTestEnv(t, nil)

	_, err := env.authService.Signup(context.Background(), services.SignupInput{
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := env.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "not-the-password",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, apierrors.ErrCodeInvalidCredentials, decode[apierrors.APIError](t, w).Code)
	require.Empty(t, w.Result().Cookies())
}

func TestAuthHandler_GetCurrentProfile(t *testing.T) {
	env := setupTestEnv(t, nil)

	profile, err := env.authService.Signup(context.Background(), services.SignupInput{
		Email:    "current@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	c.Set(constants.ContextKeyProfileID, profile.ID)

	NewAuthHandler(env.authService).GetCurrentProfile(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, profile.Email, decode[dto.ProfileDTO](t, w).Email)
}
