package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	paymentapp "github.com/auctionhouse/backend/internal/application/payment"
	"github.com/auctionhouse/backend/internal/interfaces/http/middleware"
)

// PaymentHandler handles payment request endpoints
type PaymentHandler struct {
	BaseHandler
	payments *paymentapp.Service
	logger   *zap.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *paymentapp.Service, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

type submitPaymentRequest struct {
	AuctionID     uuid.UUID       `json:"auction_id" binding:"required"`
	PaymentType   string          `json:"payment_type" binding:"required,oneof=participation_fee winner_payment"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Currency      string          `json:"currency"`
	Method        string          `json:"method" binding:"required"`
	TransactionID string          `json:"transaction_id" binding:"required"`
	Screenshot    string          `json:"screenshot"`
}

type screenshotUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// Submit handles POST /payments
func (h *PaymentHandler) Submit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req submitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.payments.Submit(c.Request.Context(), paymentapp.SubmitInput{
		UserID:        userID,
		AuctionID:     req.AuctionID,
		PaymentType:   req.PaymentType,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Method:        req.Method,
		TransactionID: req.TransactionID,
		Screenshot:    req.Screenshot,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListMine handles GET /payments/mine
func (h *PaymentHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter paymentapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.payments.ListMine(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.payments.Get(c.Request.Context(), id, paymentapp.Viewer{
		ID:      userID,
		IsAdmin: middleware.IsAdmin(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// WinnerStatus handles GET /auctions/:id/winner-payment. It reports
// where the caller stands with their winner payment for that auction;
// the auction's creator gets the winner's payment state instead.
func (h *PaymentHandler) WinnerStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	auctionID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	status, err := h.payments.WinnerPaymentStatus(c.Request.Context(), userID, auctionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, status)
}

// PrepareScreenshotUpload handles POST /payments/screenshots/uploads
func (h *PaymentHandler) PrepareScreenshotUpload(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req screenshotUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	target, err := h.payments.PrepareScreenshotUpload(c.Request.Context(), userID, req.Filename, req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, target)
}
