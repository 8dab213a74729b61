package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/vnb-store/internal/cart"
	"github.com/MikeMC777/vnb-store/internal/httpx"
	"github.com/MikeMC777/vnb-store/internal/logx"
)

// addItemRequest payload of add_item. Quantity defaults to 1.
// swagger:model addItemRequest
type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity"   binding:"omitempty,gte=1" example:"1"`
	Size      string `json:"size"       binding:"max=20"`
	Color     string `json:"color"      binding:"max=50"`
}

// updateItemRequest payload of update_item. Zero or less removes the line.
// swagger:model updateItemRequest
type updateItemRequest struct {
	ItemID   string `json:"item_id"  binding:"required"`
	Quantity *int   `json:"quantity" binding:"required"`
}

// removeItemRequest payload of remove_item.
// swagger:model removeItemRequest
type removeItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

func writeCart(c *gin.Context, log *logx.Logger, snap *cart.Snapshot, err error) {
	if err != nil {
		httpx.Fail(c, log, err)
		return
	}
	c.JSON(http.StatusOK, snap.View())
}

// currentCartHandler godoc
// @Summary      The caller's cart, created when absent
// @Tags         cart
// @Produce      json
// @Param        X-Session-Key  header  string  false  "anonymous session key"
// @Success      200  {object}  cart.View
// @Router       /orders/cart/current [get]
func currentCartHandler(svc *cart.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := svc.Snapshot(c.Request.Context(), httpx.MustCurrent(c).Owner())
		writeCart(c, log, snap, err)
	}
}

// addItemHandler godoc
// @Summary      Add a product variant to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body  addItemRequest  true  "line"
// @Success      200  {object}  cart.View
// @Failure      400  {object}  httpx.ErrorBody
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /orders/cart/add_item [post]
func addItemHandler(svc *cart.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		in := cart.AddItemInput{ProductID: req.ProductID, Quantity: 1, Size: req.Size, Color: req.Color}
		if req.Quantity != nil {
			in.Quantity = *req.Quantity
		}
		snap, err := svc.AddItem(c.Request.Context(), httpx.MustCurrent(c).Owner(), in)
		writeCart(c, log, snap, err)
	}
}

// updateItemHandler godoc
// @Summary      Set a line's quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body  updateItemRequest  true  "line"
// @Success      200  {object}  cart.View
// @Failure      400  {object}  httpx.ErrorBody
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /orders/cart/update_item [post]
func updateItemHandler(svc *cart.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateItemRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		snap, err := svc.UpdateItem(c.Request.Context(), httpx.MustCurrent(c).Owner(), req.ItemID, *req.Quantity)
		writeCart(c, log, snap, err)
	}
}

// removeItemHandler godoc
// @Summary      Remove a line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body  removeItemRequest  true  "line"
// @Success      200  {object}  cart.View
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /orders/cart/remove_item [post]
func removeItemHandler(svc *cart.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req removeItemRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		snap, err := svc.RemoveItem(c.Request.Context(), httpx.MustCurrent(c).Owner(), req.ItemID)
		writeCart(c, log, snap, err)
	}
}

// clearCartHandler godoc
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  cart.View
// @Router       /orders/cart/clear [post]
func clearCartHandler(svc *cart.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := svc.Clear(c.Request.Context(), httpx.MustCurrent(c).Owner())
		writeCart(c, log, snap, err)
	}
}
