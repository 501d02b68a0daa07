package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetDashboard(c *gin.Context) {
	dashboard, err := s.billingReportSvc.Dashboard(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dashboard})
}

func (s *Server) GetMonthlyRevenue(c *gin.Context) {
	period, err := s.periodFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	revenue, err := s.billingReportSvc.MonthlyRevenue(c.Request.Context(), period)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": revenue})
}

func (s *Server) GetChurn(c *gin.Context) {
	period, err := s.periodFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	churn, err := s.billingReportSvc.Churn(c.Request.Context(), period)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": churn})
}

func (s *Server) GetPaidMRR(c *gin.Context) {
	period, err := s.periodFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	mrr, err := s.billingReportSvc.PaidMRR(c.Request.Context(), period)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"month":    period.Month,
		"year":     period.Year,
		"paid_mrr": mrr,
	}})
}
