package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	auctionapp "github.com/auctionhouse/backend/internal/application/auction"
	"github.com/auctionhouse/backend/internal/interfaces/http/middleware"
)

// AuctionHandler handles auction catalog and bidding endpoints
type AuctionHandler struct {
	BaseHandler
	auctions *auctionapp.Service
	logger   *zap.Logger
}

// NewAuctionHandler creates a new auction handler
func NewAuctionHandler(auctions *auctionapp.Service, logger *zap.Logger) *AuctionHandler {
	return &AuctionHandler{auctions: auctions, logger: logger}
}

// viewer builds the caller identity from JWT claims, nil for anonymous
// requests.
func viewer(c *gin.Context) *auctionapp.Viewer {
	userID, err := getUserID(c)
	if err != nil {
		return nil
	}
	return &auctionapp.Viewer{ID: userID, IsAdmin: middleware.IsAdmin(c)}
}

type createAuctionRequest struct {
	Title         string           `json:"title" binding:"required,min=3,max=200"`
	Description   string           `json:"description" binding:"max=5000"`
	Category      string           `json:"category" binding:"required"`
	AuctionType   string           `json:"auction_type" binding:"required,oneof=english sealed reserve"`
	StartingPrice decimal.Decimal  `json:"starting_price" binding:"required"`
	BidIncrement  decimal.Decimal  `json:"bid_increment" binding:"required"`
	MinimumPrice  *decimal.Decimal `json:"minimum_price"`
	ReservePrice  *decimal.Decimal `json:"reserve_price"`
	Currency      string           `json:"currency"`
	StartAt       time.Time        `json:"start_at" binding:"required"`
	EndAt         time.Time        `json:"end_at" binding:"required"`
	Images        []string         `json:"images"`
	Certificates  []string         `json:"certificates"`
}

type placeBidRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency"`
}

type mediaUploadRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=image certificate"`
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// List handles GET /auctions
func (h *AuctionHandler) List(c *gin.Context) {
	var filter auctionapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.auctions.ListAuctions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get handles GET /auctions/:id. Anonymous callers see the public
// projection; owners, admins, and disclosure-eligible parties see more.
func (h *AuctionHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	detail, err := h.auctions.GetAuction(c.Request.Context(), id, viewer(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, detail)
}

// Create handles POST /auctions
func (h *AuctionHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req createAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.auctions.CreateAuction(c.Request.Context(), auctionapp.CreateAuctionInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		AuctionType:   req.AuctionType,
		StartingPrice: req.StartingPrice,
		BidIncrement:  req.BidIncrement,
		MinimumPrice:  req.MinimumPrice,
		ReservePrice:  req.ReservePrice,
		Currency:      req.Currency,
		SellerID:      userID,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Images:        req.Images,
		Certificates:  req.Certificates,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Delete handles DELETE /auctions/:id
func (h *AuctionHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	requester := auctionapp.Viewer{ID: userID, IsAdmin: middleware.IsAdmin(c)}
	if err := h.auctions.DeleteAuction(c.Request.Context(), id, requester); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// PlaceBid handles POST /auctions/:id/bids
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	bid, err := h.auctions.PlaceBid(c.Request.Context(), auctionapp.PlaceBidInput{
		AuctionID: id,
		BidderID:  userID,
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, bid)
}

// ListMine handles GET /auctions/mine
func (h *AuctionHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter auctionapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.auctions.ListMyAuctions(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListWon handles GET /auctions/won
func (h *AuctionHandler) ListWon(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	items, err := h.auctions.ListWonAuctions(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// ListParticipated handles GET /auctions/participated
func (h *AuctionHandler) ListParticipated(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	items, err := h.auctions.ListParticipatedAuctions(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// PrepareMediaUpload handles POST /auctions/media/uploads
func (h *AuctionHandler) PrepareMediaUpload(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req mediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	target, err := h.auctions.PrepareMediaUpload(c.Request.Context(), userID, req.Kind, req.Filename, req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, target)
}
