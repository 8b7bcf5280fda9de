package invoice

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
	l := zap.L().Named("invoice.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("invoice.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("invoice request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func bindError(c *gin.Context, err error) {
	appErr := apperror.MapValidationError(err)
	response.Error(c, http.StatusBadRequest, apperror.CodeValidation, appErr.Message, nil)
}

func listMeta(n int) *response.Meta {
	meta := response.NewMeta(int64(n), n)
	return &meta
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListMine(c *gin.Context) {
	resp, err := h.service.ListMine(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, listMeta(len(resp)))
}

func (h *Handler) SearchMine(c *gin.Context) {
	resp, err := h.service.SearchMine(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("setNumber"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, listMeta(len(resp)))
}

func (h *Handler) ListSets(c *gin.Context) {
	resp, err := h.service.ListSets(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, listMeta(len(resp)))
}

func (h *Handler) GetDetail(c *gin.Context) {
	resp, err := h.service.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DownloadPDF(c *gin.Context) {
	filename, body, err := h.service.RenderPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Attachment(c, filename, "application/pdf", body)
}

func (h *Handler) Edit(c *gin.Context) {
	var req EditInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.service.Edit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// UpdateSetStatus handles PUT /invoices/:id/:action where :id is the set number.
func (h *Handler) UpdateSetStatus(c *gin.Context) {
	resp, err := h.service.UpdateSetStatus(
		c.Request.Context(),
		c.GetString(middleware.ContextUserID),
		c.Param("id"),
		c.Param("action"),
	)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
