package handler

import (
	clubapp "github.com/clubbill/backend/internal/application/club"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClubHandler handles tenant registry API endpoints
type ClubHandler struct {
	BaseHandler
	clubService *clubapp.Service
}

// NewClubHandler creates a new ClubHandler
func NewClubHandler(clubService *clubapp.Service) *ClubHandler {
	return &ClubHandler{clubService: clubService}
}

// CreateClubRequest represents a request to register a club
type CreateClubRequest struct {
	Name                 string `json:"name" binding:"required,min=1,max=200"`
	ContactEmail         string `json:"contact_email" binding:"required,email"`
	CommissionPercentage string `json:"commission_percentage"`
}

// UpdateCommissionRequest represents a request to change a club's platform rate
type UpdateCommissionRequest struct {
	CommissionPercentage string `json:"commission_percentage" binding:"required"`
}

// CreateClub registers a club
func (h *ClubHandler) CreateClub(c *gin.Context) {
	var req CreateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := clubapp.CreateClubRequest{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
	}
	if req.CommissionPercentage != "" {
		pct, err := decimal.NewFromString(req.CommissionPercentage)
		if err != nil {
			h.BadRequest(c, "Invalid commission percentage format")
			return
		}
		appReq.CommissionPercentage = &pct
	}

	club, err := h.clubService.CreateClub(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, club)
}

// GetClub returns a club by ID
func (h *ClubHandler) GetClub(c *gin.Context) {
	clubID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid club ID format")
		return
	}

	club, err := h.clubService.GetClub(c.Request.Context(), clubID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, club)
}

// UpdateCommission updates a club's commission percentage
func (h *ClubHandler) UpdateCommission(c *gin.Context) {
	clubID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid club ID format")
		return
	}

	var req UpdateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pct, err := decimal.NewFromString(req.CommissionPercentage)
	if err != nil {
		h.BadRequest(c, "Invalid commission percentage format")
		return
	}

	club, err := h.clubService.UpdateCommissionPercentage(c.Request.Context(), clubID, pct)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, club)
}

// RegisterRoutes implements RouteRegistrar interface
func (h *ClubHandler) RegisterRoutes(rg *gin.RouterGroup) {
	clubs := rg.Group("/clubs")
	{
		clubs.POST("", h.CreateClub)
		clubs.GET("/:id", h.GetClub)
		clubs.PUT("/:id/commission", h.UpdateCommission)
	}
}
