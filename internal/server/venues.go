package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ambiencedomain "github.com/smallbiznis/streetsignal/internal/ambience/domain"
	obscontext "github.com/smallbiznis/streetsignal/internal/observability/context"
	signaldomain "github.com/smallbiznis/streetsignal/internal/signal/domain"
	"github.com/smallbiznis/streetsignal/pkg/geo"
)

const HeaderActorID = "X-Actor-Id"

func (s *Server) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.engine.State()})
}

type updateLocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (s *Server) UpdateLocation(c *gin.Context) {
	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Lat == nil || *req.Lat < -90 || *req.Lat > 90 {
		AbortWithError(c, newValidationError("lat", "invalid_lat", "lat must be within [-90, 90]"))
		return
	}
	if req.Lng == nil || *req.Lng < -180 || *req.Lng > 180 {
		AbortWithError(c, newValidationError("lng", "invalid_lng", "lng must be within [-180, 180]"))
		return
	}

	update, err := s.engine.UpdateLocation(c.Request.Context(), geo.Point{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": update})
}

func (s *Server) ListVenues(c *gin.Context) {
	filter, err := venueFilterFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s.registry.List(filter)})
}

func (s *Server) GetVenue(c *gin.Context) {
	venue, err := s.registry.Get(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": venue})
}

func (s *Server) ToggleFavorite(c *gin.Context) {
	favorite, err := s.registry.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": c.Param("id"), "favorite": favorite}})
}

type signalRequest struct {
	Type      string `json:"type"`
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
}

// actor resolves who issues a presence signal: the request body, then the
// actor header, then the local profile.
func (s *Server) actor(c *gin.Context, id, name string) signaldomain.Actor {
	id = strings.TrimSpace(id)
	if id == "" {
		id = strings.TrimSpace(c.GetHeader(HeaderActorID))
	}
	profile := s.engine.Profile(c.Request.Context())
	if id == "" || id == profile.ID {
		if strings.TrimSpace(name) == "" {
			name = profile.Name
		}
		if id == "" {
			id = profile.ID
		}
	}
	c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), id))
	return signaldomain.Actor{ID: id, Name: strings.TrimSpace(name)}
}

func (s *Server) SendSignal(c *gin.Context) {
	var req signalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	signalType, err := signaldomain.ParseType(req.Type)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	outcome, err := s.signalSvc.Signal(c.Request.Context(), c.Param("id"), signalType, s.actor(c, req.ActorID, req.ActorName))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": outcome})
}

func (s *Server) LeaveVenue(c *gin.Context) {
	outcome, err := s.signalSvc.Leave(c.Request.Context(), c.Param("id"), s.actor(c, "", ""))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": outcome})
}

type ambienceRequest struct {
	Competition *float64 `json:"competition"`
	Skill       *float64 `json:"skill"`
	Friendly    *float64 `json:"friendly"`
	Intensity   *float64 `json:"intensity"`
}

func (s *Server) RecordAmbience(c *gin.Context) {
	var req ambienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Competition == nil || req.Skill == nil || req.Friendly == nil || req.Intensity == nil {
		AbortWithError(c, newValidationError("ratings", "required", "all four ratings are required"))
		return
	}

	venue, err := s.ambienceSvc.Record(c.Request.Context(), c.Param("id"), ambiencedomain.Ratings{
		Competition: *req.Competition,
		Skill:       *req.Skill,
		Friendly:    *req.Friendly,
		Intensity:   *req.Intensity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": venue})
}

type reportRequest struct {
	Issue string `json:"issue"`
}

func (s *Server) ReportIssue(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	report, err := s.rewardSvc.ReportIssue(c.Request.Context(), c.Param("id"), req.Issue)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": report})
}
