package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/vnb-store/internal/httpx"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/order"
)

// checkoutHandler godoc
// @Summary      Place an order from the caller's cart
// @Description  A repeated Idempotency-Key returns the order placed the first time with 200.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "client retry key"
// @Param        body             body    order.CheckoutRequest  true   "customer and shipping"
// @Success      201  {object}  order.Order
// @Success      200  {object}  order.Order
// @Failure      400  {object}  httpx.ErrorBody
// @Failure      409  {object}  httpx.ErrorBody
// @Router       /orders/orders [post]
func checkoutHandler(svc *order.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CheckoutRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		o, replayed, err := svc.Checkout(c.Request.Context(), order.CheckoutInput{
			Owner:          httpx.MustCurrent(c).Owner(),
			Customer:       req.Customer(),
			Notes:          req.Notes,
			IdempotencyKey: strings.TrimSpace(c.GetHeader(httpx.IdempotencyHeader)),
		})
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		if replayed {
			c.JSON(http.StatusOK, o)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// listOrdersHandler godoc
// @Summary      The caller's orders, newest first
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "page size"
// @Param        offset  query  int  false  "offset"
// @Success      200  {array}  order.Order
// @Router       /orders/orders [get]
func listOrdersHandler(svc *order.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := atoiDefault(c.Query("limit"), 20)
		offset := atoiDefault(c.Query("offset"), 0)
		out, err := svc.ListForUser(c.Request.Context(), httpx.MustCurrent(c).UserID, limit, offset)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// getOrderHandler godoc
// @Summary      One order, visible to its owner and staff
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "order id"
// @Success      200  {object}  order.Order
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /orders/orders/{id} [get]
func getOrderHandler(svc *order.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := httpx.MustCurrent(c)
		o, err := svc.Get(c.Request.Context(), c.Param("id"), id.UserID, id.Staff)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
