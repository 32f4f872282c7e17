package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	enginedomain "github.com/smallbiznis/streetsignal/internal/engine/domain"
)

func (s *Server) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"profile": s.engine.Profile(ctx),
		"flags":   s.engine.Flags(ctx),
	}})
}

func (s *Server) SetProfileFlag(c *gin.Context) {
	flag, err := enginedomain.ParseFlag(c.Param("flag"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	flags, err := s.engine.SetFlag(c.Request.Context(), flag)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": flags})
}

func (s *Server) ResetDemoData(c *gin.Context) {
	state, err := s.engine.ResetDemoData(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}
