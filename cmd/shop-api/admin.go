package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/vnb-store/internal/httpx"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/order"
	"github.com/MikeMC777/vnb-store/internal/product"
)

var negativePriceBody = httpx.ErrorBody{Error: "Invalid request", Fields: map[string]string{"price": "gte"}}

// createProductHandler godoc
// @Summary      Create a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  product.CreateProductRequest  true  "product"
// @Success      201  {object}  product.Product
// @Failure      400  {object}  httpx.ErrorBody
// @Failure      409  {object}  httpx.ErrorBody
// @Router       /admin/products [post]
func createProductHandler(repo product.Repository, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateProductRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		if req.Price.IsNegative() {
			c.JSON(http.StatusBadRequest, negativePriceBody)
			return
		}
		p := &product.Product{
			CategoryID:    req.CategoryID,
			Name:          strings.TrimSpace(req.Name),
			Description:   req.Description,
			Price:         req.Price,
			ImageURL:      req.ImageURL,
			IsActive:      true,
			IsFeatured:    req.IsFeatured,
			StockQuantity: req.Stock,
			SKU:           req.SKU,
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// updateProductHandler godoc
// @Summary      Update a product; omitted fields keep their value
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                        true  "product id"
// @Param        body  body  product.UpdateProductRequest  true  "fields to change"
// @Success      200  {object}  product.Product
// @Failure      400  {object}  httpx.ErrorBody
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /admin/products/{id} [put]
func updateProductHandler(repo product.Repository, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.UpdateProductRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		if req.Price != nil && req.Price.IsNegative() {
			c.JSON(http.StatusBadRequest, negativePriceBody)
			return
		}
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		if name := strings.TrimSpace(req.Name); name != "" {
			p.Name = name
		}
		if req.Description != "" {
			p.Description = req.Description
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.Stock != nil {
			p.StockQuantity = *req.Stock
		}
		if req.IsActive != nil {
			p.IsActive = *req.IsActive
		}
		if req.IsFeatured != nil {
			p.IsFeatured = *req.IsFeatured
		}
		if err := repo.Update(c.Request.Context(), p); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// deleteProductHandler godoc
// @Summary      Delete a product
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "product id"
// @Success      204
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /admin/products/{id} [delete]
func deleteProductHandler(repo product.Repository, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		if !ok {
			httpx.Fail(c, log, product.ErrNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// updateOrderStatusHandler godoc
// @Summary      Change an order's status; cancelling restocks its lines
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                     true  "order id"
// @Param        body  body  order.UpdateStatusRequest  true  "new status"
// @Success      200  {object}  order.Order
// @Failure      400  {object}  httpx.ErrorBody
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /admin/orders/{id}/status [put]
func updateOrderStatusHandler(svc *order.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
