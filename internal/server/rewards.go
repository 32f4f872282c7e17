package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	rewarddomain "github.com/smallbiznis/streetsignal/internal/reward/domain"
)

func (s *Server) GetRewards(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.rewardSvc.Summary(c.Request.Context())})
}

func (s *Server) ListOffers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": rewarddomain.Offers()})
}

// RedeemOffer spends the offer cost. With ?format=png the response is the
// QR code image, otherwise the redemption as JSON.
func (s *Server) RedeemOffer(c *gin.Context) {
	redemption, err := s.rewardSvc.Redeem(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if c.Query("format") == "png" {
		c.Header("X-Redemption-Code", redemption.Code)
		c.Data(http.StatusOK, "image/png", redemption.QRCode)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": redemption})
}

func (s *Server) GetRatingHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.ratingSvc.History(c.Request.Context())})
}

type matchRequest struct {
	MyScore       *int `json:"my_score"`
	OpponentScore *int `json:"opponent_score"`
}

func (s *Server) RecordMatch(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.MyScore == nil || req.OpponentScore == nil {
		AbortWithError(c, newValidationError("score", "required", "both scores are required"))
		return
	}

	result, err := s.ratingSvc.RecordMatch(c.Request.Context(), *req.MyScore, *req.OpponentScore)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
