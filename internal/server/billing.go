package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/gestao/internal/billing/domain"
)

// ListBillings returns the period's billings, generating missing ones first.
func (s *Server) ListBillings(c *gin.Context) {
	period, err := s.periodFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	views, err := s.billingSvc.ListPeriod(c.Request.Context(), billingdomain.ListPeriodRequest{
		Month: period.Month,
		Year:  period.Year,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    views,
		"summary": s.billingSvc.Summarize(views),
	})
}

func (s *Server) ListOutstandingBillings(c *gin.Context) {
	views, err := s.billingSvc.ListOutstanding(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

func (s *Server) SummarizeBillings(c *gin.Context) {
	period, err := s.periodFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	views, err := s.billingSvc.List(c.Request.Context(), billingdomain.ListRequest{
		Month: period.Month,
		Year:  period.Year,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s.billingSvc.Summarize(views)})
}

func (s *Server) ListRecurringClients(c *gin.Context) {
	period, err := s.periodFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	clients, err := s.billingSvc.RecurringClientsForMonth(c.Request.Context(), period)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": clients})
}

func (s *Server) GenerateBillings(c *gin.Context) {
	var req billingdomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.billingSvc.Generate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) MarkBillingPaid(c *gin.Context) {
	view, err := s.billingSvc.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) MarkBillingUnpaid(c *gin.Context) {
	view, err := s.billingSvc.MarkUnpaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) CancelBilling(c *gin.Context) {
	view, err := s.billingSvc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) UpdateBillingNotes(c *gin.Context) {
	var req billingdomain.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.billingSvc.UpdateNotes(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}
