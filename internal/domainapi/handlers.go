package domainapi

import (
	"net/http"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/web"
	"github.com/gin-gonic/gin"
)

func (h *Handler) fail(c *gin.Context, err error) {
	web.AbortWithError(c, h.logger, err)
}

// pageParams reads page (>= 0) and size (>= 1) query parameters.
func pageParams(c *gin.Context) (int, int, error) {
	page, err := web.QueryInt(c, "page", 0, 0, -1)
	if err != nil {
		return 0, 0, err
	}
	size, err := web.QueryInt(c, "size", model.DefaultPageSize, 1, -1)
	if err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

func (h *Handler) getAdvisorClients(c *gin.Context) {
	advisorID, err := web.PathID(c, "advisorId", model.MaxIDLength)
	if err != nil {
		h.fail(c, err)
		return
	}
	page, size, err := pageParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp, err := h.clients.GetAdvisorClients(c.Request.Context(), advisorID, page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) searchClients(c *gin.Context) {
	var req model.ClientSearchRequest
	if err := web.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.PageOrDefault() < 0 {
		h.fail(c, apperror.FieldError("page", "must be greater than or equal to 0"))
		return
	}
	if req.SizeOrDefault() < 1 {
		h.fail(c, apperror.FieldError("size", "must be greater than or equal to 1"))
		return
	}

	resp, err := h.clients.SearchClients(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getAccountHoldings(c *gin.Context) {
	accountID, err := web.PathID(c, "accountId", model.MaxIDLength)
	if err != nil {
		h.fail(c, err)
		return
	}
	page, size, err := pageParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp, err := h.holdings.GetAccountHoldings(c.Request.Context(), accountID, page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getPortfolioSummary(c *gin.Context) {
	accountID, err := web.PathID(c, "accountId", model.MaxIDLength)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp, err := h.holdings.GetPortfolioSummary(c.Request.Context(), accountID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getTaxLots always answers an empty list; tax lots are only kept in the database.
func (h *Handler) getTaxLots(c *gin.Context) {
	if _, err := web.PathID(c, "accountId", model.MaxIDLength); err != nil {
		h.fail(c, err)
		return
	}
	if _, err := web.PathID(c, "symbol", model.MaxSymbolLength); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, []any{})
}

func (h *Handler) exportHoldings(c *gin.Context) {
	var req model.ExportRequest
	if err := web.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	export, err := h.exports.ExportHoldings(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, "application/octet-stream", export.Content)
}
