package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/vnb-store/internal/httpx"
	"github.com/MikeMC777/vnb-store/internal/intake"
	"github.com/MikeMC777/vnb-store/internal/logx"
)

// subscribeHandler godoc
// @Summary      Subscribe to the newsletter
// @Description  201 for a new address, 200 when already active or reactivated.
// @Tags         store
// @Accept       json
// @Produce      json
// @Param        body  body  intake.NewsletterRequest  true  "email"
// @Success      201  {object}  messageBody
// @Success      200  {object}  messageBody
// @Failure      400  {object}  httpx.ErrorBody
// @Router       /store/newsletter [post]
func subscribeHandler(svc *intake.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req intake.NewsletterRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		res, err := svc.Subscribe(c.Request.Context(), req)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		c.JSON(status, messageBody{Message: res.Message})
	}
}

// contactHandler godoc
// @Summary      Send a contact message
// @Tags         store
// @Accept       json
// @Produce      json
// @Param        body  body  intake.ContactRequest  true  "message"
// @Success      201  {object}  messageBody
// @Failure      400  {object}  httpx.ErrorBody
// @Router       /store/contact [post]
func contactHandler(svc *intake.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req intake.ContactRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		if _, err := svc.Contact(c.Request.Context(), req); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, messageBody{Message: intake.MsgContact})
	}
}

// investmentHandler godoc
// @Summary      Send an investment inquiry
// @Tags         store
// @Accept       json
// @Produce      json
// @Param        body  body  intake.InvestmentRequest  true  "inquiry"
// @Success      201  {object}  messageBody
// @Failure      400  {object}  httpx.ErrorBody
// @Router       /store/investment [post]
func investmentHandler(svc *intake.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req intake.InvestmentRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		if _, err := svc.Invest(c.Request.Context(), req); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, messageBody{Message: intake.MsgInvestment})
	}
}
