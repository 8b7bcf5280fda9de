package punch

import (
	"net/http"

	"go-derma/internal/middleware"
	"go-derma/internal/shared/apperror"
	"go-derma/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("punch.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("punch.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("punch request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

type transition func(c *gin.Context, userID string) (PunchResponse, error)

func (h *Handler) run(c *gin.Context, status int, fn transition) {
	resp, err := fn(c, c.GetString(middleware.ContextUserID))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, status, resp, nil)
}

func (h *Handler) PunchIn(c *gin.Context) {
	h.run(c, http.StatusCreated, func(c *gin.Context, userID string) (PunchResponse, error) {
		return h.service.PunchIn(c.Request.Context(), userID)
	})
}

func (h *Handler) PunchOut(c *gin.Context) {
	h.run(c, http.StatusOK, func(c *gin.Context, userID string) (PunchResponse, error) {
		return h.service.PunchOut(c.Request.Context(), userID)
	})
}

func (h *Handler) StartBreak(c *gin.Context) {
	h.run(c, http.StatusOK, func(c *gin.Context, userID string) (PunchResponse, error) {
		return h.service.StartBreak(c.Request.Context(), userID)
	})
}

func (h *Handler) EndBreak(c *gin.Context) {
	h.run(c, http.StatusOK, func(c *gin.Context, userID string) (PunchResponse, error) {
		return h.service.EndBreak(c.Request.Context(), userID)
	})
}

// MyPunch answers with data null when the caller has no open punch.
func (h *Handler) MyPunch(c *gin.Context) {
	resp, err := h.service.Current(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) MyRecent(c *gin.Context) {
	h.recent(c, c.GetString(middleware.ContextUserID))
}

func (h *Handler) UserRecent(c *gin.Context) {
	h.recent(c, c.Param("userId"))
}

func (h *Handler) recent(c *gin.Context, userID string) {
	resp, err := h.service.Recent(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	meta := response.NewMeta(int64(len(resp)), len(resp))
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) Today(c *gin.Context) {
	resp, err := h.service.Today(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	meta := response.NewMeta(int64(len(resp)), len(resp))
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) AllRecords(c *gin.Context) {
	resp, err := h.service.AllRecords(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	meta := response.NewMeta(int64(len(resp)), len(resp))
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) SetApproval(c *gin.Context) {
	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperror.MapValidationError(err)
		response.Error(c, http.StatusBadRequest, apperror.CodeValidation, appErr.Message, nil)
		return
	}

	resp, err := h.service.SetApproval(c.Request.Context(), c.Param("punchId"), *req.AdminApproved)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
