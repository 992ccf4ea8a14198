// Package docs registers the swagger specification served at /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "summary": "Login",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/menu/categories": {
            "get": {
                "produces": ["application/json"],
                "summary": "List categories",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/menu/products": {
            "get": {
                "produces": ["application/json"],
                "summary": "List products",
                "parameters": [{"type": "string", "name": "category", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/menu/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get product with ingredients",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/cart": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get cart",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "summary": "Clear cart",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/cart/items": {
            "post": {
                "consumes": ["application/json"],
                "summary": "Add item to cart",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/cart/items/{productID}": {
            "put": {
                "consumes": ["application/json"],
                "summary": "Set item quantity",
                "parameters": [{"type": "string", "name": "productID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "delete": {
                "summary": "Remove item from cart",
                "parameters": [{"type": "string", "name": "productID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/checkout": {
            "post": {
                "produces": ["application/json"],
                "summary": "Place order from cart",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "summary": "List own orders",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get own order with items",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8443",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "MenuFlow API",
	Description:      "Restaurant menu, cart and order API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
