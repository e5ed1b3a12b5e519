package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	promotiondomain "github.com/sceneworks/scene/internal/promotion/domain"
)

type createPromotionRequest struct {
	VenueID     string     `json:"venueId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

func (s *Server) CreatePromotion(c *gin.Context) {
	var req createPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.promotionSvc.Create(c.Request.Context(), promotiondomain.CreatePromotionRequest{
		VenueID:     strings.TrimSpace(req.VenueID),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePromotionRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Active      *bool      `json:"active"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

func (s *Server) UpdatePromotion(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.promotionSvc.Update(c.Request.Context(), promotiondomain.UpdatePromotionRequest{
		PromotionID: id,
		Title:       req.Title,
		Description: req.Description,
		Active:      req.Active,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListVenuePromotions(c *gin.Context) {
	venueID := strings.TrimSpace(c.Param("id"))
	activeOnly := strings.EqualFold(strings.TrimSpace(c.Query("active")), "true")

	resp, err := s.promotionSvc.ListForVenue(c.Request.Context(), venueID, activeOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RedeemPromotion(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.promotionSvc.Redeem(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
