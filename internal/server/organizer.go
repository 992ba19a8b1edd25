package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	organizerdomain "github.com/eventick/ticketpay/internal/organizer/domain"
)

type createOrganizerBody struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required"`
}

func (s *Server) PostOrganizer(c *gin.Context) {
	var body createOrganizerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	org, err := s.organizerSvc.Create(c.Request.Context(), organizerdomain.CreateOrganizerRequest{
		UserID: body.UserID,
		Name:   body.Name,
		Email:  body.Email,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

func (s *Server) GetOrganizer(c *gin.Context) {
	org, err := s.organizerSvc.GetByID(c.Request.Context(), organizerdomain.GetOrganizerRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

func (s *Server) ListOrganizers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	orgs, err := s.organizerSvc.List(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organizers": orgs})
}

type updateBankDetailsBody struct {
	AccountNumber string `json:"account_number" binding:"required"`
	BankCode      string `json:"bank_code" binding:"required"`
}

func (s *Server) PutBankDetails(c *gin.Context) {
	var body updateBankDetailsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	org, err := s.organizerSvc.UpdateBankDetails(c.Request.Context(), organizerdomain.UpdateBankDetailsRequest{
		OrganizerID:   c.Param("id"),
		AccountNumber: body.AccountNumber,
		BankCode:      body.BankCode,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}
