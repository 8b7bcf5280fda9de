package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-derma/internal/user"
	usererrors "go-derma/internal/user/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(body, &env))
	return env
}

var _ user.Service = (*fakeUserService)(nil)

type fakeUserService struct {
	listPendingFn func(ctx context.Context) ([]user.UserResponse, error)
	reviewFn      func(ctx context.Context, reviewerID, id string, approve bool) (user.ReviewResponse, error)
}

func (f *fakeUserService) ListPending(ctx context.Context) ([]user.UserResponse, error) {
	return f.listPendingFn(ctx)
}
func (f *fakeUserService) Review(ctx context.Context, reviewerID, id string, approve bool) (user.ReviewResponse, error) {
	return f.reviewFn(ctx, reviewerID, id, approve)
}

func TestUserHandler_Review(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("approve", func(t *testing.T) {
		svc := &fakeUserService{
			reviewFn: func(ctx context.Context, reviewerID, id string, approve bool) (user.ReviewResponse, error) {
				assert.Equal(t, "admin-1", reviewerID)
				assert.Equal(t, "u-1", id)
				assert.True(t, approve)
				return user.ReviewResponse{User: user.UserResponse{ID: id, IsApproved: true}, Approved: true}, nil
			},
		}

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPatch, "/api/admin/approve-user/u-1", strings.NewReader(`{"approve":true}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: "u-1"}}
		c.Set("user_id", "admin-1")

		user.NewHandler(svc).Review(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("missing approve flag", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPatch, "/api/admin/approve-user/u-1", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		user.NewHandler(&fakeUserService{}).Review(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeUserService{
			reviewFn: func(ctx context.Context, reviewerID, id string, approve bool) (user.ReviewResponse, error) {
				return user.ReviewResponse{}, usererrors.ErrUserNotFound
			},
		}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPatch, "/api/admin/approve-user/x", strings.NewReader(`{"approve":false}`))
		c.Request.Header.Set("Content-Type", "application/json")

		user.NewHandler(svc).Review(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}

func TestUserHandler_GetPending(t *testing.T) {
	svc := &fakeUserService{
		listPendingFn: func(ctx context.Context) ([]user.UserResponse, error) {
			return []user.UserResponse{{ID: "u-1"}, {ID: "u-2"}}, nil
		},
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/pending-users", nil)

	user.NewHandler(svc).GetPending(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	var got []user.UserResponse
	assert.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Len(t, got, 2)
	assert.NotContains(t, w.Body.String(), "password")
}
