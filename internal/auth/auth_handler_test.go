package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-derma/internal/auth"
	autherrors "go-derma/internal/auth/errors"
	authMock "go-derma/internal/auth/mock"
	"go-derma/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestAuthHandler_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := authMock.NewMockService(ctrl)
	router := setupAuthRouter()
	router.POST("/login", auth.NewHandler(mockService, false).Login)

	t.Run("web client gets cookie", func(t *testing.T) {
		mockService.EXPECT().
			Login(gomock.Any(), "test@example.com", "password123").
			Return(auth.LoginResponse{Token: "tok", ExpiresAt: time.Now().Add(time.Hour), User: user.UserResponse{Email: "test@example.com"}}, nil)

		body, _ := json.Marshal(auth.LoginRequest{Email: "test@example.com", Password: "password123"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-Type", "WEB")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		cookies := w.Result().Cookies()
		assert.Len(t, cookies, 1)
		assert.Equal(t, "access_token", cookies[0].Name)
		assert.Equal(t, "tok", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("api client gets no cookie", func(t *testing.T) {
		mockService.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(auth.LoginResponse{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil)

		body, _ := json.Marshal(auth.LoginRequest{Email: "test@example.com", Password: "password123"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-Type", "api")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("invalid credentials", func(t *testing.T) {
		mockService.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(auth.LoginResponse{}, autherrors.ErrInvalidCredentials)

		body, _ := json.Marshal(auth.LoginRequest{Email: "wrong@test.com", Password: "123"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var env envelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	})

	t.Run("pending account", func(t *testing.T) {
		mockService.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(auth.LoginResponse{}, autherrors.ErrAccountPending)

		body, _ := json.Marshal(auth.LoginRequest{Email: "p@test.com", Password: "123456"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var env envelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := authMock.NewMockService(ctrl)
	router := setupAuthRouter()
	router.POST("/register", auth.NewHandler(mockService, false).Register)

	t.Run("created", func(t *testing.T) {
		mockService.EXPECT().Register(gomock.Any(), gomock.Any()).Return(user.UserResponse{Email: "n@example.com"}, nil)

		body, _ := json.Marshal(auth.RegisterRequest{
			Email: "n@example.com", Password: "secret1", Name: "N", Phone: "1",
			Address: "A", CityState: "C", Pincode: "P",
		})
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		body, _ := json.Marshal(auth.RegisterRequest{
			Email: "n@example.com", Password: "123", Name: "N", Phone: "1",
			Address: "A", CityState: "C", Pincode: "P",
		})
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("conflict", func(t *testing.T) {
		mockService.EXPECT().Register(gomock.Any(), gomock.Any()).Return(user.UserResponse{}, autherrors.ErrEmailAlreadyRegistered)

		body, _ := json.Marshal(auth.RegisterRequest{
			Email: "n@example.com", Password: "secret1", Name: "N", Phone: "1",
			Address: "A", CityState: "C", Pincode: "P",
		})
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := authMock.NewMockService(ctrl)
	router := setupAuthRouter()
	router.POST("/logout", func(c *gin.Context) { c.Set("user_id", "u-1") }, auth.NewHandler(mockService, true).Logout)

	mockService.EXPECT().Logout(gomock.Any(), "u-1").Return(auth.LogoutResponse{LoggedOut: true}, nil)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
	assert.True(t, cookies[0].Secure)
}
