package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	goaldomain "github.com/smallbiznis/gestao/internal/goal/domain"
)

func (s *Server) CreateGoal(c *gin.Context) {
	var req goaldomain.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	goal, err := s.goalSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": goal})
}

// ListGoals lists every goal, or one period's goals when month or year is given.
func (s *Server) ListGoals(c *gin.Context) {
	if c.Query("month") == "" && c.Query("year") == "" {
		goals, err := s.goalSvc.List(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": goals})
		return
	}

	period, err := s.periodFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	goals, err := s.goalSvc.ListByMonth(c.Request.Context(), period.Month, period.Year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": goals})
}

func (s *Server) EnsureRevenueGoal(c *gin.Context) {
	period, err := s.periodFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	goal, err := s.goalSvc.EnsureRevenueGoal(c.Request.Context(), period.Month, period.Year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": goal})
}

func (s *Server) UpdateGoal(c *gin.Context) {
	var req goaldomain.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	goal, err := s.goalSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": goal})
}

func (s *Server) DeleteGoal(c *gin.Context) {
	if err := s.goalSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
