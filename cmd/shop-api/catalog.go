package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/vnb-store/internal/httpx"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/product"
)

// productPage is a page of catalog results.
// swagger:model productPage
type productPage struct {
	Items  []product.Product `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func catalogQuery(c *gin.Context) product.Query {
	q := product.Query{
		Q:            c.Query("search"),
		CategorySlug: c.Query("category"),
		Ordering:     c.Query("ordering"),
		Limit:        atoiDefault(c.Query("limit"), 20),
		Offset:       atoiDefault(c.Query("offset"), 0),
	}
	if v, err := strconv.ParseBool(c.Query("is_featured")); err == nil {
		q.Featured = &v
	}
	return q.Normalize()
}

// listCategoriesHandler godoc
// @Summary      List active categories
// @Tags         store
// @Produce      json
// @Param        search  query  string  false  "name or description contains"
// @Success      200  {array}  product.Category
// @Router       /store/categories [get]
func listCategoriesHandler(repo product.Repository, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.ListCategories(c.Request.Context(), c.Query("search"))
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// getCategoryHandler godoc
// @Summary      Category by slug
// @Tags         store
// @Produce      json
// @Param        slug  path  string  true  "category slug"
// @Success      200  {object}  product.Category
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /store/categories/{slug} [get]
func getCategoryHandler(repo product.Repository, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, err := repo.GetCategory(c.Request.Context(), c.Param("slug"))
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

// listProductsHandler godoc
// @Summary      List active products
// @Tags         store
// @Produce      json
// @Param        search       query  string  false  "name, description or sku contains"
// @Param        category     query  string  false  "category slug"
// @Param        is_featured  query  bool    false  "featured only"
// @Param        ordering     query  string  false  "price, created_at or name; prefix - for descending"
// @Param        limit        query  int     false  "page size (max 100)"
// @Param        offset       query  int     false  "offset"
// @Success      200  {object}  productPage
// @Router       /store/products [get]
func listProductsHandler(repo product.Repository, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := catalogQuery(c)
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, productPage{Items: items, Limit: q.Limit, Offset: q.Offset})
	}
}

// featuredProductsHandler godoc
// @Summary      Featured products
// @Tags         store
// @Produce      json
// @Success      200  {array}  product.Product
// @Router       /store/products/featured [get]
func featuredProductsHandler(repo product.Repository, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		featured := true
		q := product.Query{Featured: &featured, Limit: product.FeaturedLimit}.Normalize()
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// productsByCategoryHandler godoc
// @Summary      Products of one category
// @Tags         store
// @Produce      json
// @Param        slug  query  string  true  "category slug"
// @Success      200  {array}  product.Product
// @Failure      400  {object}  httpx.ErrorBody
// @Router       /store/products/category [get]
func productsByCategoryHandler(repo product.Repository, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := strings.TrimSpace(c.Query("slug"))
		if slug == "" {
			c.JSON(http.StatusBadRequest, httpx.ErrorBody{Error: "Category slug is required"})
			return
		}
		q := catalogQuery(c)
		q.CategorySlug = slug
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// getProductHandler godoc
// @Summary      Product detail
// @Tags         store
// @Produce      json
// @Param        slug  path  string  true  "product slug"
// @Success      200  {object}  product.Detail
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /store/products/{slug} [get]
func getProductHandler(repo product.Repository, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := repo.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}
