package handler

import (
	"time"

	billingapp "github.com/clubbill/backend/internal/application/billing"
	"github.com/clubbill/backend/internal/domain/billing"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// parseDateTime parses a datetime string in various formats
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// PaymentHandler handles payment lifecycle API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest represents a request to record a payment
type CreatePaymentRequest struct {
	MemberID        string   `json:"member_id" binding:"required,uuid"`
	Amount          string   `json:"amount" binding:"required"`
	Method          string   `json:"method" binding:"required,paymentmethod"`
	PaymentDate     string   `json:"payment_date"`
	RecurringFeeIDs []string `json:"recurring_fee_ids" binding:"omitempty,dive,uuid"`
	SpecialFeeIDs   []string `json:"special_fee_ids" binding:"omitempty,dive,uuid"`
	ReferenceNumber string   `json:"reference_number" binding:"omitempty,max=100"`
	ReceiptURL      string   `json:"receipt_url" binding:"omitempty,max=500"`
	Notes           string   `json:"notes"`
}

// CancelPaymentRequest represents a request to cancel a payment
type CancelPaymentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// UpdatePaymentDetailsRequest carries the fields that stay mutable after creation
type UpdatePaymentDetailsRequest struct {
	ReferenceNumber *string `json:"reference_number" binding:"omitempty,max=100"`
	ReceiptURL      *string `json:"receipt_url" binding:"omitempty,max=500"`
	Notes           *string `json:"notes"`
}

// CreatePayment records a payment and allocates it against the given fees
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount format")
		return
	}

	appReq := billingapp.CreatePaymentRequest{
		ClubID:          clubID,
		MemberID:        memberID,
		Amount:          amount,
		Method:          billing.PaymentMethod(req.Method),
		ReferenceNumber: req.ReferenceNumber,
		ReceiptURL:      req.ReceiptURL,
		Notes:           req.Notes,
	}

	if req.PaymentDate != "" {
		paymentDate, err := parseDateTime(req.PaymentDate)
		if err != nil {
			h.BadRequest(c, "Invalid payment date format")
			return
		}
		appReq.PaymentDate = &paymentDate
	}

	appReq.RecurringFeeIDs, err = parseUUIDs(req.RecurringFeeIDs)
	if err != nil {
		h.BadRequest(c, "Invalid recurring fee ID format")
		return
	}
	appReq.SpecialFeeIDs, err = parseUUIDs(req.SpecialFeeIDs)
	if err != nil {
		h.BadRequest(c, "Invalid special fee ID format")
		return
	}

	result, err := h.paymentService.CreatePayment(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// ApprovePayment approves a payment and creates its commission snapshot
func (h *PaymentHandler) ApprovePayment(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	result, err := h.paymentService.ApprovePayment(c.Request.Context(), clubID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// CancelPayment cancels a payment and reverts its allocations
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req CancelPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.CancelPayment(c.Request.Context(), clubID, paymentID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// GetPayment returns a payment with its allocations
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	result, err := h.paymentService.GetPayment(c.Request.Context(), clubID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListPayments returns a club's payments, filtered and paginated
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	filter, err := h.parsePaymentFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.paymentService.ListPayments(c.Request.Context(), clubID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, filter.Page, filter.PageSize)
}

// UpdatePaymentDetails updates the mutable descriptive fields of a payment
func (h *PaymentHandler) UpdatePaymentDetails(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req UpdatePaymentDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.UpdatePaymentDetails(
		c.Request.Context(), clubID, paymentID,
		req.ReferenceNumber, req.ReceiptURL, req.Notes,
	)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// GetSummary returns approved payment and commission totals for the club
func (h *PaymentHandler) GetSummary(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := parseDateTime(raw)
		if err != nil {
			h.BadRequest(c, "Invalid from date format")
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseDateTime(raw)
		if err != nil {
			h.BadRequest(c, "Invalid to date format")
			return
		}
		to = &t
	}

	summary, err := h.paymentService.GetSummary(c.Request.Context(), clubID, from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// ListCommissions returns all commission records of the club
func (h *PaymentHandler) ListCommissions(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	commissions, err := h.paymentService.ListCommissions(c.Request.Context(), clubID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, commissions)
}

// parsePaymentFilter builds a PaymentFilter from query parameters
func (h *PaymentHandler) parsePaymentFilter(c *gin.Context) (billing.PaymentFilter, error) {
	filter := billing.PaymentFilter{}
	filter.Filter = shared.DefaultFilter()

	var list struct {
		Page     int `form:"page" binding:"omitempty,min=1"`
		PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&list); err != nil {
		return filter, err
	}
	if list.Page > 0 {
		filter.Page = list.Page
	}
	if list.PageSize > 0 {
		filter.PageSize = list.PageSize
	}

	if raw := c.Query("member_id"); raw != "" {
		memberID, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.MemberID = &memberID
	}
	if raw := c.Query("status"); raw != "" {
		status := billing.PaymentStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("from"); raw != "" {
		t, err := parseDateTime(raw)
		if err != nil {
			return filter, err
		}
		filter.FromDate = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseDateTime(raw)
		if err != nil {
			return filter, err
		}
		filter.ToDate = &t
	}
	return filter, nil
}

// parseUUIDs parses a list of UUID strings
func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// RegisterRoutes implements RouteRegistrar interface
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.GET("", h.ListPayments)
		payments.GET("/summary", h.GetSummary)
		payments.GET("/:id", h.GetPayment)
		payments.POST("", h.CreatePayment)
		payments.PATCH("/:id", h.UpdatePaymentDetails)
		payments.POST("/:id/approve", h.ApprovePayment)
		payments.POST("/:id/cancel", h.CancelPayment)
	}

	rg.GET("/commissions", h.ListCommissions)
}
