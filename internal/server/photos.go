package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	photodomain "github.com/sceneworks/scene/internal/photo/domain"
)

type addPhotoRequest struct {
	VenueID string `json:"venueId"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

func (s *Server) AddPhoto(c *gin.Context) {
	var req addPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.photoSvc.Add(c.Request.Context(), photodomain.AddPhotoRequest{
		VenueID: strings.TrimSpace(req.VenueID),
		URL:     strings.TrimSpace(req.URL),
		Caption: strings.TrimSpace(req.Caption),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListVenuePhotos(c *gin.Context) {
	venueID := strings.TrimSpace(c.Param("id"))
	limit := parseOptionalInt(c.Query("limit"), 50)

	resp, err := s.photoSvc.ListForVenue(c.Request.Context(), venueID, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
