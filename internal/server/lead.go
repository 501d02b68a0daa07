package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	leaddomain "github.com/smallbiznis/gestao/internal/lead/domain"
	"github.com/smallbiznis/gestao/pkg/db/pagination"
)

func (s *Server) CreateLead(c *gin.Context) {
	var req leaddomain.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lead, err := s.leadSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": lead})
}

func (s *Server) ListLeads(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Stage string `form:"stage"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.leadSvc.List(c.Request.Context(), leaddomain.ListLeadRequest{
		Pagination: query.Pagination,
		Stage:      query.Stage,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp.Leads, "page_info": resp.PageInfo})
}

func (s *Server) GetLeadStageCounts(c *gin.Context) {
	counts, err := s.leadSvc.StageCounts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": counts})
}

func (s *Server) GetLeadByID(c *gin.Context) {
	lead, err := s.leadSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lead})
}

func (s *Server) UpdateLead(c *gin.Context) {
	var req leaddomain.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lead, err := s.leadSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lead})
}

func (s *Server) DeleteLead(c *gin.Context) {
	if err := s.leadSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
