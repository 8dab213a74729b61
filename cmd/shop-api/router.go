package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/vnb-store/docs"
	"github.com/MikeMC777/vnb-store/internal/cart"
	"github.com/MikeMC777/vnb-store/internal/httpx"
	"github.com/MikeMC777/vnb-store/internal/intake"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/order"
	"github.com/MikeMC777/vnb-store/internal/product"
	"github.com/MikeMC777/vnb-store/internal/user"
)

type app struct {
	log       *logx.Logger
	products  product.Repository
	tokens    *user.Tokens
	validator httpx.UserValidator
	carts     *cart.Service
	orders    *order.Service
	accounts  *user.Service
	intake    *intake.Service
	origins   []string
}

// policy is the capability each API operation needs. Anything under /api
// that is missing here is staff-only.
var policy = httpx.Policy{
	"GET /api/store/categories":                       httpx.AnyIdentity,
	"GET /api/store/categories/:slug":                 httpx.AnyIdentity,
	"GET /api/store/products":                         httpx.AnyIdentity,
	"GET /api/store/products/featured":                httpx.AnyIdentity,
	"GET /api/store/products/category":                httpx.AnyIdentity,
	"GET /api/store/products/:slug":                   httpx.AnyIdentity,
	"POST /api/store/newsletter":                      httpx.AnyIdentity,
	"POST /api/store/contact":                         httpx.AnyIdentity,
	"POST /api/store/investment":                      httpx.AnyIdentity,
	"POST /api/accounts/users":                        httpx.AnyIdentity,
	"POST /api/accounts/users/login":                  httpx.AnyIdentity,
	"POST /api/accounts/users/logout":                 httpx.Authenticated,
	"POST /api/accounts/users/check_email":            httpx.AnyIdentity,
	"POST /api/accounts/users/request_password_reset": httpx.AnyIdentity,
	"POST /api/accounts/users/reset_password":         httpx.AnyIdentity,
	"GET /api/accounts/users/me":                      httpx.Authenticated,
	"PATCH /api/accounts/users/me":                    httpx.Authenticated,
	"GET /api/orders/cart/current":                    httpx.AnyIdentity,
	"POST /api/orders/cart/add_item":                  httpx.AnyIdentity,
	"POST /api/orders/cart/update_item":               httpx.AnyIdentity,
	"POST /api/orders/cart/remove_item":               httpx.AnyIdentity,
	"POST /api/orders/cart/clear":                     httpx.AnyIdentity,
	"POST /api/orders/orders":                         httpx.AnyIdentity,
	"GET /api/orders/orders":                          httpx.AnyIdentity,
	"GET /api/orders/orders/:id":                      httpx.AnyIdentity,
}

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(a.log), httpx.Metrics(), httpx.CORS(a.origins))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api", httpx.Authenticate(a.tokens, a.validator, a.log), httpx.Authorize(policy))

	store := api.Group("/store")
	store.GET("/categories", listCategoriesHandler(a.products, a.log))
	store.GET("/categories/:slug", getCategoryHandler(a.products, a.log))
	store.GET("/products", listProductsHandler(a.products, a.log))
	store.GET("/products/featured", featuredProductsHandler(a.products, a.log))
	store.GET("/products/category", productsByCategoryHandler(a.products, a.log))
	store.GET("/products/:slug", getProductHandler(a.products, a.log))
	store.POST("/newsletter", subscribeHandler(a.intake, a.log))
	store.POST("/contact", contactHandler(a.intake, a.log))
	store.POST("/investment", investmentHandler(a.intake, a.log))

	users := api.Group("/accounts/users")
	users.POST("", registerHandler(a.accounts, a.log))
	users.POST("/login", loginHandler(a.accounts, a.log))
	users.POST("/logout", logoutHandler())
	users.POST("/check_email", checkEmailHandler(a.accounts, a.log))
	users.POST("/request_password_reset", requestResetHandler(a.accounts, a.log))
	users.POST("/reset_password", resetPasswordHandler(a.accounts, a.log))
	users.GET("/me", meHandler(a.accounts, a.log))
	users.PATCH("/me", updateMeHandler(a.accounts, a.log))

	carts := api.Group("/orders/cart")
	carts.GET("/current", currentCartHandler(a.carts, a.log))
	carts.POST("/add_item", addItemHandler(a.carts, a.log))
	carts.POST("/update_item", updateItemHandler(a.carts, a.log))
	carts.POST("/remove_item", removeItemHandler(a.carts, a.log))
	carts.POST("/clear", clearCartHandler(a.carts, a.log))

	orders := api.Group("/orders/orders")
	orders.POST("", checkoutHandler(a.orders, a.log))
	orders.GET("", listOrdersHandler(a.orders, a.log))
	orders.GET("/:id", getOrderHandler(a.orders, a.log))

	admin := api.Group("/admin")
	admin.POST("/products", createProductHandler(a.products, a.log))
	admin.PUT("/products/:id", updateProductHandler(a.products, a.log))
	admin.DELETE("/products/:id", deleteProductHandler(a.products, a.log))
	admin.PUT("/orders/:id/status", updateOrderStatusHandler(a.orders, a.log))

	return r
}
