package lfdapi

import (
	"fmt"
	"net/http"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/reqctx"
	"github.com/STTM-NSU/advisor-workspace/internal/web"
	"github.com/gin-gonic/gin"
)

func (h *Handler) fail(c *gin.Context, err error) {
	web.AbortWithError(c, h.logger.With("request_id", reqctx.RequestID(c.Request.Context())), err)
}

func checkPage(offset, size int) error {
	if offset < 0 {
		return apperror.FieldError("pageOffset", "must be greater than or equal to 0")
	}
	if size < 1 || size > model.MaxInternalPage {
		return apperror.FieldError("pageSize", fmt.Sprintf("must be between 1 and %d", model.MaxInternalPage))
	}
	return nil
}

func (h *Handler) getAdvisorClients(c *gin.Context) {
	advisorID, err := web.PathID(c, "advisorId", model.MaxIDLength)
	if err != nil {
		h.fail(c, err)
		return
	}
	offset, err := web.QueryInt(c, "pageOffset", 0, 0, -1)
	if err != nil {
		h.fail(c, err)
		return
	}
	size, err := web.QueryInt(c, "pageSize", model.DefaultPageSize, 1, model.MaxInternalPage)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp, err := h.clients.GetAdvisorClients(c.Request.Context(), advisorID, offset, size)
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
	if err := checkPage(req.PageOffsetOrDefault(), req.PageSizeOrDefault()); err != nil {
		h.fail(c, err)
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

	var req model.HoldingsRequest
	if c.Request.ContentLength != 0 {
		if err := web.BindJSON(c, &req); err != nil {
			h.fail(c, err)
			return
		}
	}
	req.AccountID = accountID
	if err := checkPage(req.PageOffsetOrDefault(), req.PageSizeOrDefault()); err != nil {
		h.fail(c, err)
		return
	}

	resp, err := h.holdings.GetAccountHoldings(c.Request.Context(), req)
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

func (h *Handler) getAccount(c *gin.Context) {
	accountID, err := web.PathID(c, "accountId", model.MaxIDLength)
	if err != nil {
		h.fail(c, err)
		return
	}

	account, err := h.accounts.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
