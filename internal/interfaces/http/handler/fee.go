package handler

import (
	billingapp "github.com/clubbill/backend/internal/application/billing"
	"github.com/clubbill/backend/internal/domain/billing"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/clubbill/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FeeHandler handles obligation API endpoints
type FeeHandler struct {
	BaseHandler
	feeService *billingapp.FeeService
}

// NewFeeHandler creates a new FeeHandler
func NewFeeHandler(feeService *billingapp.FeeService) *FeeHandler {
	return &FeeHandler{feeService: feeService}
}

// CreateRecurringFeeRequest represents a request to create a plan-generated fee
type CreateRecurringFeeRequest struct {
	MemberID       string `json:"member_id" binding:"required,uuid"`
	FeePlanID      string `json:"fee_plan_id" binding:"required,uuid"`
	Amount         string `json:"amount" binding:"required"`
	DiscountAmount string `json:"discount_amount"`
	PeriodStart    string `json:"period_start" binding:"required"`
	PeriodEnd      string `json:"period_end" binding:"required"`
	DueDate        string `json:"due_date" binding:"required"`
}

// CreateSpecialFeeRequest represents a request to create a one-off fee
type CreateSpecialFeeRequest struct {
	MemberID string `json:"member_id" binding:"required,uuid"`
	EventID  string `json:"event_id" binding:"omitempty,uuid"`
	Name     string `json:"name" binding:"required,min=1,max=200"`
	FeeType  string `json:"fee_type" binding:"required,feetype"`
	Amount   string `json:"amount" binding:"required"`
	DueDate  string `json:"due_date" binding:"required"`
}

// CreateRecurringFee creates a recurring fee instance for a member
func (h *FeeHandler) CreateRecurringFee(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	var req CreateRecurringFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}
	feePlanID, err := uuid.Parse(req.FeePlanID)
	if err != nil {
		h.BadRequest(c, "Invalid fee plan ID format")
		return
	}

	amount, err := parseMoney(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount format")
		return
	}
	discount := valueobject.ZeroEUR()
	if req.DiscountAmount != "" {
		discount, err = parseMoney(req.DiscountAmount)
		if err != nil {
			h.BadRequest(c, "Invalid discount amount format")
			return
		}
	}

	periodStart, err := parseDateTime(req.PeriodStart)
	if err != nil {
		h.BadRequest(c, "Invalid period start format")
		return
	}
	periodEnd, err := parseDateTime(req.PeriodEnd)
	if err != nil {
		h.BadRequest(c, "Invalid period end format")
		return
	}
	dueDate, err := parseDateTime(req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid due date format")
		return
	}

	fee, err := h.feeService.CreateRecurringFee(c.Request.Context(), billingapp.CreateRecurringFeeRequest{
		ClubID:         clubID,
		MemberID:       memberID,
		FeePlanID:      feePlanID,
		Amount:         amount,
		DiscountAmount: discount,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		DueDate:        dueDate,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, fee)
}

// CreateSpecialFee creates a one-off fee for a member
func (h *FeeHandler) CreateSpecialFee(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	var req CreateSpecialFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	var eventID *uuid.UUID
	if req.EventID != "" {
		id, err := uuid.Parse(req.EventID)
		if err != nil {
			h.BadRequest(c, "Invalid event ID format")
			return
		}
		eventID = &id
	}

	amount, err := parseMoney(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount format")
		return
	}
	dueDate, err := parseDateTime(req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid due date format")
		return
	}

	fee, err := h.feeService.CreateSpecialFee(c.Request.Context(), billingapp.CreateSpecialFeeRequest{
		ClubID:   clubID,
		MemberID: memberID,
		EventID:  eventID,
		Name:     req.Name,
		FeeType:  billing.SpecialFeeType(req.FeeType),
		Amount:   amount,
		DueDate:  dueDate,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, fee)
}

// ListOutstanding returns a member's unpaid obligations of both kinds
func (h *FeeHandler) ListOutstanding(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	fees, err := h.feeService.ListOutstanding(c.Request.Context(), clubID, memberID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, fees)
}

// ListByMember returns a member's fees with optional status and due date filters
func (h *FeeHandler) ListByMember(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	filter := billing.ObligationFilter{Filter: shared.DefaultFilter()}
	if raw := c.Query("status"); raw != "" {
		status := billing.FeeStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("due_from"); raw != "" {
		t, err := parseDateTime(raw)
		if err != nil {
			h.BadRequest(c, "Invalid due_from date format")
			return
		}
		filter.DueFrom = &t
	}
	if raw := c.Query("due_to"); raw != "" {
		t, err := parseDateTime(raw)
		if err != nil {
			h.BadRequest(c, "Invalid due_to date format")
			return
		}
		filter.DueTo = &t
	}

	fees, err := h.feeService.ListByMember(c.Request.Context(), clubID, memberID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, fees)
}

// MarkRecurringFeeOverdue flags a past-due recurring fee as OVERDUE
func (h *FeeHandler) MarkRecurringFeeOverdue(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	feeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fee ID format")
		return
	}

	fee, err := h.feeService.MarkRecurringFeeOverdue(c.Request.Context(), clubID, feeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, fee)
}

// MarkSpecialFeeOverdue flags a past-due special fee as OVERDUE
func (h *FeeHandler) MarkSpecialFeeOverdue(c *gin.Context) {
	clubID, err := getClubID(c)
	if err != nil {
		h.BadRequest(c, "Invalid club ID")
		return
	}

	feeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fee ID format")
		return
	}

	fee, err := h.feeService.MarkSpecialFeeOverdue(c.Request.Context(), clubID, feeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, fee)
}

// parseMoney parses a decimal string into EUR Money
func parseMoney(s string) (valueobject.Money, error) {
	return valueobject.NewMoneyEURFromString(s)
}

// RegisterRoutes implements RouteRegistrar interface
func (h *FeeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	fees := rg.Group("/fees")
	{
		fees.POST("/recurring", h.CreateRecurringFee)
		fees.POST("/special", h.CreateSpecialFee)
		fees.POST("/recurring/:id/overdue", h.MarkRecurringFeeOverdue)
		fees.POST("/special/:id/overdue", h.MarkSpecialFeeOverdue)
	}

	members := rg.Group("/members")
	{
		members.GET("/:memberId/fees", h.ListByMember)
		members.GET("/:memberId/fees/outstanding", h.ListOutstanding)
	}
}
