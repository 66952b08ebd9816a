package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	auctionapp "github.com/auctionhouse/backend/internal/application/auction"
	paymentapp "github.com/auctionhouse/backend/internal/application/payment"
)

// AdminHandler handles moderation and verification endpoints. The
// router mounts it behind the admin role check.
type AdminHandler struct {
	BaseHandler
	auctions *auctionapp.Service
	payments *paymentapp.Service
	logger   *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(auctions *auctionapp.Service, payments *paymentapp.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{auctions: auctions, payments: payments, logger: logger}
}

type approveAuctionRequest struct {
	Notes string `json:"notes"`
}

type rejectAuctionRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=1000"`
}

type resolvePaymentRequest struct {
	Notes string `json:"notes"`
}

// ListPendingApproval handles GET /admin/auctions/pending
func (h *AdminHandler) ListPendingApproval(c *gin.Context) {
	var filter auctionapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.auctions.ListPendingApproval(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ApproveAuction handles POST /admin/auctions/:id/approve
func (h *AdminHandler) ApproveAuction(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req approveAuctionRequest
	_ = c.ShouldBindJSON(&req)

	resp, err := h.auctions.ApproveAuction(c.Request.Context(), id, adminID, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RejectAuction handles POST /admin/auctions/:id/reject
func (h *AdminHandler) RejectAuction(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req rejectAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "A rejection reason is required")
		return
	}

	resp, err := h.auctions.RejectAuction(c.Request.Context(), id, adminID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// StopAuction handles POST /admin/auctions/:id/stop
func (h *AdminHandler) StopAuction(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.auctions.StopAuction(c.Request.Context(), id, adminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ContinueAuction handles POST /admin/auctions/:id/continue
func (h *AdminHandler) ContinueAuction(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.auctions.ContinueAuction(c.Request.Context(), id, adminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListPayments handles GET /admin/payments
func (h *AdminHandler) ListPayments(c *gin.Context) {
	var filter paymentapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ApprovePayment handles POST /admin/payments/:id/approve
func (h *AdminHandler) ApprovePayment(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req resolvePaymentRequest
	_ = c.ShouldBindJSON(&req)

	resp, err := h.payments.Approve(c.Request.Context(), id, adminID, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RejectPayment handles POST /admin/payments/:id/reject
func (h *AdminHandler) RejectPayment(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req resolvePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Rejection notes are required")
		return
	}

	resp, err := h.payments.Reject(c.Request.Context(), id, adminID, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// AuctionPaymentSummary handles GET /admin/auctions/:id/payments/summary
func (h *AdminHandler) AuctionPaymentSummary(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	summary, err := h.payments.AuctionSummary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
