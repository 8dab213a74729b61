// Package docs holds the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/shop-api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/store/categories": {
			"get": {
				"tags": [
					"store"
				],
				"summary": "List active categories",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "",
						"name": "search",
						"in": "query"
					}
				]
			}
		},
		"/store/categories/{slug}": {
			"get": {
				"tags": [
					"store"
				],
				"summary": "Category by slug",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/product.Category"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "",
						"name": "slug",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/store/products": {
			"get": {
				"tags": [
					"store"
				],
				"summary": "List active products",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/main.productPage"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "",
						"name": "search",
						"in": "query"
					},
					{
						"type": "string",
						"description": "",
						"name": "category",
						"in": "query"
					},
					{
						"type": "boolean",
						"description": "",
						"name": "is_featured",
						"in": "query"
					},
					{
						"type": "string",
						"description": "",
						"name": "ordering",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "",
						"name": "offset",
						"in": "query"
					}
				]
			}
		},
		"/store/products/featured": {
			"get": {
				"tags": [
					"store"
				],
				"summary": "Featured products",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/store/products/category": {
			"get": {
				"tags": [
					"store"
				],
				"summary": "Products of one category",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "",
						"name": "slug",
						"in": "query",
						"required": true
					}
				]
			}
		},
		"/store/products/{slug}": {
			"get": {
				"tags": [
					"store"
				],
				"summary": "Product detail",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/product.Detail"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "",
						"name": "slug",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/store/newsletter": {
			"post": {
				"tags": [
					"store"
				],
				"summary": "Subscribe to the newsletter",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/main.messageBody"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/main.messageBody"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/intake.NewsletterRequest"
						}
					}
				]
			}
		},
		"/store/contact": {
			"post": {
				"tags": [
					"store"
				],
				"summary": "Send a contact message",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/main.messageBody"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/intake.ContactRequest"
						}
					}
				]
			}
		},
		"/store/investment": {
			"post": {
				"tags": [
					"store"
				],
				"summary": "Send an investment inquiry",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/main.messageBody"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/intake.InvestmentRequest"
						}
					}
				]
			}
		},
		"/accounts/users": {
			"post": {
				"tags": [
					"accounts"
				],
				"summary": "Create an account",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/user.Session"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/user.RegisterRequest"
						}
					}
				]
			}
		},
		"/accounts/users/login": {
			"post": {
				"tags": [
					"accounts"
				],
				"summary": "Exchange credentials for a bearer token",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/main.loginResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/user.LoginRequest"
						}
					}
				]
			}
		},
		"/accounts/users/logout": {
			"post": {
				"tags": [
					"accounts"
				],
				"summary": "End the session",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/main.messageBody"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/accounts/users/check_email": {
			"post": {
				"tags": [
					"accounts"
				],
				"summary": "Whether an account uses this email",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/main.emailRequest"
						}
					}
				]
			}
		},
		"/accounts/users/me": {
			"get": {
				"tags": [
					"accounts"
				],
				"summary": "The authenticated account",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/user.Account"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"patch": {
				"tags": [
					"accounts"
				],
				"summary": "Update names and profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/user.Account"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/user.UpdateMeRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/accounts/users/request_password_reset": {
			"post": {
				"tags": [
					"accounts"
				],
				"summary": "Send a password reset token",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/main.messageBody"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/user.PasswordResetRequest"
						}
					}
				]
			}
		},
		"/accounts/users/reset_password": {
			"post": {
				"tags": [
					"accounts"
				],
				"summary": "Set a new password with a reset token",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/main.messageBody"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/user.ResetPasswordRequest"
						}
					}
				]
			}
		},
		"/orders/cart/current": {
			"get": {
				"tags": [
					"cart"
				],
				"summary": "The caller's cart",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/cart.View"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "anonymous session key",
						"name": "X-Session-Key",
						"in": "header"
					}
				]
			}
		},
		"/orders/cart/add_item": {
			"post": {
				"tags": [
					"cart"
				],
				"summary": "Add a product variant to the cart",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/cart.View"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "anonymous session key",
						"name": "X-Session-Key",
						"in": "header"
					},
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/main.addItemRequest"
						}
					}
				]
			}
		},
		"/orders/cart/update_item": {
			"post": {
				"tags": [
					"cart"
				],
				"summary": "Set a line's quantity",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/cart.View"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "anonymous session key",
						"name": "X-Session-Key",
						"in": "header"
					},
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/main.updateItemRequest"
						}
					}
				]
			}
		},
		"/orders/cart/remove_item": {
			"post": {
				"tags": [
					"cart"
				],
				"summary": "Remove a line",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/cart.View"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "anonymous session key",
						"name": "X-Session-Key",
						"in": "header"
					},
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/main.removeItemRequest"
						}
					}
				]
			}
		},
		"/orders/cart/clear": {
			"post": {
				"tags": [
					"cart"
				],
				"summary": "Empty the cart",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/cart.View"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "anonymous session key",
						"name": "X-Session-Key",
						"in": "header"
					}
				]
			}
		},
		"/orders/orders": {
			"post": {
				"tags": [
					"orders"
				],
				"summary": "Place an order from the caller's cart",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/order.Order"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/order.Order"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "anonymous session key",
						"name": "X-Session-Key",
						"in": "header"
					},
					{
						"type": "string",
						"description": "client retry key",
						"name": "Idempotency-Key",
						"in": "header"
					},
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/order.CheckoutRequest"
						}
					}
				]
			},
			"get": {
				"tags": [
					"orders"
				],
				"summary": "The caller's orders, newest first",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "",
						"name": "offset",
						"in": "query"
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/orders/orders/{id}": {
			"get": {
				"tags": [
					"orders"
				],
				"summary": "One order",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/order.Order"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/products": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Create a product",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/product.Product"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/product.CreateProductRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/products/{id}": {
			"put": {
				"tags": [
					"admin"
				],
				"summary": "Update a product",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/product.Product"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/product.UpdateProductRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"admin"
				],
				"summary": "Delete a product",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/orders/{id}/status": {
			"put": {
				"tags": [
					"admin"
				],
				"summary": "Change an order's status",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/order.Order"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "payload",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/order.UpdateStatusRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		}
	},
	"definitions": {
		"httpx.ErrorBody": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string",
					"example": "Insufficient stock"
				},
				"fields": {
					"type": "object",
					"additionalProperties": {
						"type": "string"
					}
				}
			}
		},
		"main.messageBody": {
			"type": "object",
			"properties": {
				"message": {
					"type": "string"
				}
			}
		},
		"main.emailRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				}
			}
		},
		"main.loginResponse": {
			"type": "object",
			"properties": {
				"message": {
					"type": "string"
				},
				"token": {
					"type": "string"
				},
				"expires_at": {
					"type": "string"
				},
				"user": {
					"$ref": "#/definitions/user.User"
				},
				"profile": {
					"$ref": "#/definitions/user.Profile"
				}
			}
		},
		"main.addItemRequest": {
			"type": "object",
			"properties": {
				"product_id": {
					"type": "string"
				},
				"quantity": {
					"type": "integer",
					"example": 1
				},
				"size": {
					"type": "string"
				},
				"color": {
					"type": "string"
				}
			}
		},
		"main.updateItemRequest": {
			"type": "object",
			"properties": {
				"item_id": {
					"type": "string"
				},
				"quantity": {
					"type": "integer"
				}
			}
		},
		"main.removeItemRequest": {
			"type": "object",
			"properties": {
				"item_id": {
					"type": "string"
				}
			}
		},
		"main.productPage": {
			"type": "object",
			"properties": {
				"items": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/product.Product"
					}
				},
				"limit": {
					"type": "integer"
				},
				"offset": {
					"type": "integer"
				}
			}
		},
		"product.Category": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"slug": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"image_url": {
					"type": "string"
				},
				"is_active": {
					"type": "boolean"
				},
				"created_at": {
					"type": "string"
				},
				"updated_at": {
					"type": "string"
				}
			}
		},
		"product.Product": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"category_id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"slug": {
					"type": "string"
				},
				"sku": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"price": {
					"type": "string",
					"example": "89.00"
				},
				"image_url": {
					"type": "string"
				},
				"is_active": {
					"type": "boolean"
				},
				"is_featured": {
					"type": "boolean"
				},
				"in_stock": {
					"type": "boolean"
				},
				"stock_quantity": {
					"type": "integer"
				},
				"created_at": {
					"type": "string"
				},
				"updated_at": {
					"type": "string"
				}
			}
		},
		"product.Detail": {
			"type": "object",
			"properties": {
				"product": {
					"$ref": "#/definitions/product.Product"
				},
				"category": {
					"$ref": "#/definitions/product.Category"
				},
				"images": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"id": {
								"type": "string"
							},
							"url": {
								"type": "string"
							},
							"alt_text": {
								"type": "string"
							},
							"is_primary": {
								"type": "boolean"
							},
							"position": {
								"type": "integer"
							}
						}
					}
				},
				"colors": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"name": {
								"type": "string"
							},
							"hex_code": {
								"type": "string"
							},
							"is_available": {
								"type": "boolean"
							}
						}
					}
				},
				"sizes": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"size": {
								"type": "string"
							},
							"is_available": {
								"type": "boolean"
							}
						}
					}
				},
				"details": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"product.CreateProductRequest": {
			"type": "object",
			"properties": {
				"category_id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"price": {
					"type": "string"
				},
				"image_url": {
					"type": "string"
				},
				"is_featured": {
					"type": "boolean"
				},
				"stock_quantity": {
					"type": "integer"
				},
				"sku": {
					"type": "string"
				}
			}
		},
		"product.UpdateProductRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"price": {
					"type": "string"
				},
				"stock_quantity": {
					"type": "integer"
				},
				"is_active": {
					"type": "boolean"
				},
				"is_featured": {
					"type": "boolean"
				}
			}
		},
		"cart.LineView": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"product_id": {
					"type": "string"
				},
				"product_name": {
					"type": "string"
				},
				"product_slug": {
					"type": "string"
				},
				"product_sku": {
					"type": "string"
				},
				"price": {
					"type": "string"
				},
				"image_url": {
					"type": "string"
				},
				"quantity": {
					"type": "integer"
				},
				"size": {
					"type": "string"
				},
				"color": {
					"type": "string"
				},
				"subtotal": {
					"type": "string"
				}
			}
		},
		"cart.View": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"items": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/cart.LineView"
					}
				},
				"total": {
					"type": "string"
				},
				"item_count": {
					"type": "integer"
				},
				"updated_at": {
					"type": "string"
				}
			}
		},
		"order.CheckoutRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"first_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				},
				"address": {
					"type": "string"
				},
				"city": {
					"type": "string"
				},
				"state": {
					"type": "string"
				},
				"zip_code": {
					"type": "string"
				},
				"country": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				}
			}
		},
		"order.UpdateStatusRequest": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string",
					"enum": [
						"pending",
						"processing",
						"shipped",
						"delivered",
						"canceled"
					]
				}
			}
		},
		"order.Item": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"product_id": {
					"type": "string"
				},
				"product_name": {
					"type": "string"
				},
				"product_sku": {
					"type": "string"
				},
				"price": {
					"type": "string"
				},
				"quantity": {
					"type": "integer"
				},
				"size": {
					"type": "string"
				},
				"color": {
					"type": "string"
				},
				"subtotal": {
					"type": "string"
				}
			}
		},
		"order.Order": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"order_number": {
					"type": "string",
					"example": "VNB-20240309-1A2B3C4D5E"
				},
				"user_id": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"first_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				},
				"address": {
					"type": "string"
				},
				"city": {
					"type": "string"
				},
				"state": {
					"type": "string"
				},
				"zip_code": {
					"type": "string"
				},
				"country": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"subtotal": {
					"type": "string"
				},
				"shipping": {
					"type": "string"
				},
				"tax": {
					"type": "string"
				},
				"total": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				},
				"items": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/order.Item"
					}
				},
				"created_at": {
					"type": "string"
				},
				"updated_at": {
					"type": "string"
				}
			}
		},
		"intake.NewsletterRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				}
			}
		},
		"intake.ContactRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				},
				"subject": {
					"type": "string"
				},
				"message": {
					"type": "string"
				}
			}
		},
		"intake.InvestmentRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				},
				"tier": {
					"type": "string",
					"enum": [
						"seed",
						"growth",
						"strategic",
						"custom"
					]
				},
				"message": {
					"type": "string"
				}
			}
		},
		"user.ProfileInput": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				},
				"area_code": {
					"type": "string"
				},
				"birth_date": {
					"type": "string"
				},
				"company": {
					"type": "string"
				},
				"address": {
					"type": "string"
				},
				"address_continued": {
					"type": "string"
				},
				"city": {
					"type": "string"
				},
				"state": {
					"type": "string"
				},
				"zip_code": {
					"type": "string"
				},
				"zip_plus": {
					"type": "string"
				},
				"location": {
					"type": "string"
				},
				"newsletter_subscribed": {
					"type": "boolean"
				}
			}
		},
		"user.RegisterRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				},
				"first_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"profile": {
					"$ref": "#/definitions/user.ProfileInput"
				}
			}
		},
		"user.LoginRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			}
		},
		"user.UpdateMeRequest": {
			"type": "object",
			"properties": {
				"first_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"profile": {
					"$ref": "#/definitions/user.ProfileInput"
				}
			}
		},
		"user.PasswordResetRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				}
			}
		},
		"user.ResetPasswordRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"token": {
					"type": "string"
				},
				"new_password": {
					"type": "string"
				}
			}
		},
		"user.User": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"created_at": {
					"type": "string"
				},
				"first_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"is_staff": {
					"type": "boolean"
				},
				"updated_at": {
					"type": "string"
				}
			}
		},
		"user.Profile": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				},
				"area_code": {
					"type": "string"
				},
				"birth_date": {
					"type": "string"
				},
				"company": {
					"type": "string"
				},
				"address": {
					"type": "string"
				},
				"address_continued": {
					"type": "string"
				},
				"city": {
					"type": "string"
				},
				"state": {
					"type": "string"
				},
				"zip_code": {
					"type": "string"
				},
				"zip_plus": {
					"type": "string"
				},
				"location": {
					"type": "string"
				},
				"newsletter_subscribed": {
					"type": "boolean"
				}
			}
		},
		"user.Account": {
			"type": "object",
			"properties": {
				"user": {
					"$ref": "#/definitions/user.User"
				},
				"profile": {
					"$ref": "#/definitions/user.Profile"
				}
			}
		},
		"user.Session": {
			"type": "object",
			"properties": {
				"token": {
					"type": "string"
				},
				"expires_at": {
					"type": "string"
				},
				"user": {
					"$ref": "#/definitions/user.User"
				},
				"profile": {
					"$ref": "#/definitions/user.Profile"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "VNB Store API",
	Description:      "Storefront catalog, cart, checkout and accounts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
