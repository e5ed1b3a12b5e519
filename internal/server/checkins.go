package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	checkindomain "github.com/sceneworks/scene/internal/checkin/domain"
)

type checkInRequest struct {
	VenueID   string   `json:"venueId"`
	EventID   string   `json:"eventId"`
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
}

func (s *Server) CheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.VenueID) == "" {
		AbortWithError(c, newValidationError("venueId", "invalid_venue_id", "venueId is required"))
		return
	}

	resp, err := s.checkinSvc.CheckIn(c.Request.Context(), checkindomain.CheckInRequest{
		VenueID:   strings.TrimSpace(req.VenueID),
		EventID:   strings.TrimSpace(req.EventID),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type checkOutRequest struct {
	Rating *int   `json:"rating"`
	Review string `json:"review"`
}

func (s *Server) CheckOut(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	// The body is optional; an empty one closes the visit without a review.
	var req checkOutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.checkinSvc.CheckOut(c.Request.Context(), checkindomain.CheckOutRequest{
		CheckinID: id,
		Rating:    req.Rating,
		Review:    req.Review,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CurrentCheckins(c *gin.Context) {
	resp, err := s.checkinSvc.Current(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
