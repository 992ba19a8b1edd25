package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	payoutdomain "github.com/eventick/ticketpay/internal/payout/domain"
)

func (s *Server) PostPayoutRequest(c *gin.Context) {
	payout, err := s.payoutSvc.RequestPayout(c.Request.Context(), payoutdomain.RequestPayoutRequest{
		OrganizerID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payout)
}

func (s *Server) GetOrganizerPayouts(c *gin.Context) {
	payouts, err := s.payoutSvc.ListByOrganizer(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

func (s *Server) GetRevenueAnalytics(c *gin.Context) {
	analytics, err := s.payoutSvc.RevenueAnalytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func (s *Server) GetPayoutRequests(c *gin.Context) {
	var req payoutdomain.ListPayoutsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.payoutSvc.ListRequests(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type processPayoutBody struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

func (s *Server) PostProcessPayout(c *gin.Context) {
	var body processPayoutBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	payout, err := s.payoutSvc.ProcessPayout(c.Request.Context(), payoutdomain.ProcessPayoutRequest{
		PayoutID: c.Param("id"),
		Approve:  body.Approve,
		Notes:    body.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

type bulkProcessBody struct {
	PayoutIDs []string `json:"payout_ids" binding:"required"`
	Approve   bool     `json:"approve"`
}

func (s *Server) PostBulkProcess(c *gin.Context) {
	var body bulkProcessBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.payoutSvc.BulkProcess(c.Request.Context(), payoutdomain.BulkProcessRequest{
		PayoutIDs: body.PayoutIDs,
		Approve:   body.Approve,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
