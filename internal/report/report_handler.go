package report

import (
	"net/http"

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
	l := zap.L().Named("report.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("report request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Customers(c *gin.Context) {
	resp, err := h.service.Customers(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	meta := response.NewMeta(int64(len(resp)), len(resp))
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) UserDetails(c *gin.Context) {
	resp, err := h.service.UserDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ExportAll(c *gin.Context) {
	h.export(c, "")
}

func (h *Handler) ExportUser(c *gin.Context) {
	h.export(c, c.Param("id"))
}

func (h *Handler) export(c *gin.Context, userID string) {
	filename, body, err := h.service.ExportCSV(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Attachment(c, filename, "text/csv; charset=utf-8", body)
}
