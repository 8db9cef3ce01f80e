// Package swagger holds the OpenAPI description served on /swagger.
package swagger

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
		"/items": {
			"post": {
				"summary": "Create an item",
				"tags": [
					"items"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.CreateItemRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				},
				"consumes": [
					"application/json"
				]
			},
			"get": {
				"summary": "List own items",
				"tags": [
					"items"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				}
			}
		},
		"/items/{itemId}": {
			"get": {
				"summary": "Get an item",
				"tags": [
					"items"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "itemId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				}
			}
		},
		"/items/{itemId}/requests": {
			"get": {
				"summary": "List requests for an owned item",
				"tags": [
					"items"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "itemId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				}
			}
		},
		"/items/{itemId}/distance": {
			"get": {
				"summary": "Distance to the item owner",
				"tags": [
					"items"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "itemId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				}
			}
		},
		"/requests": {
			"post": {
				"summary": "Create a borrow request",
				"tags": [
					"requests"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.CreateBorrowRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				},
				"consumes": [
					"application/json"
				]
			},
			"get": {
				"summary": "List own borrow requests",
				"tags": [
					"requests"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				}
			}
		},
		"/requests/{requestId}": {
			"get": {
				"summary": "Get a borrow request",
				"tags": [
					"requests"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "requestId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				}
			}
		},
		"/requests/{requestId}/accept": {
			"post": {
				"summary": "Accept a pending request",
				"tags": [
					"requests"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "requestId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				}
			}
		},
		"/requests/{requestId}/reject": {
			"post": {
				"summary": "Reject a pending request",
				"tags": [
					"requests"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "requestId",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.RejectRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/requests/{requestId}/complete": {
			"post": {
				"summary": "Complete a loan",
				"tags": [
					"requests"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "requestId",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.CompleteRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/requests/{requestId}/dispute": {
			"post": {
				"summary": "Dispute a loan",
				"tags": [
					"requests"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "requestId",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.DisputeRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/requests/{requestId}/rating": {
			"post": {
				"summary": "Rate a completed loan",
				"tags": [
					"history"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "requestId",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.RateRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/recommendations": {
			"get": {
				"summary": "Recommended items",
				"tags": [
					"recommendations"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "name",
						"in": "query"
					},
					{
						"type": "string",
						"name": "category",
						"in": "query"
					},
					{
						"type": "string",
						"name": "condition",
						"in": "query"
					},
					{
						"type": "string",
						"name": "ageRange",
						"in": "query"
					},
					{
						"type": "string",
						"name": "sort",
						"in": "query"
					},
					{
						"type": "string",
						"name": "order",
						"in": "query"
					},
					{
						"type": "integer",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"name": "size",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				}
			}
		},
		"/users/me/location": {
			"get": {
				"summary": "Own location",
				"tags": [
					"locations"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				}
			},
			"put": {
				"summary": "Update own location",
				"tags": [
					"locations"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.UpdateLocationRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/users/{userId}/location": {
			"get": {
				"summary": "Location of a user",
				"tags": [
					"locations"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "userId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				}
			}
		},
		"/users/{userId}/rating": {
			"get": {
				"summary": "Average rating of an owner",
				"tags": [
					"history"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "userId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				}
			}
		},
		"/users/{userId}/history": {
			"get": {
				"summary": "Loan history of an owner",
				"tags": [
					"history"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-User-Id",
						"in": "header",
						"required": true
					},
					{
						"type": "string",
						"name": "userId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"401": {
						"description": "Unauthorized"
					},
					"403": {
						"description": "Forbidden"
					},
					"404": {
						"description": "Not Found"
					},
					"409": {
						"description": "Conflict"
					}
				}
			}
		}
	},
	"definitions": {
		"model.CreateItemRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"categoryId": {
					"type": "string"
				},
				"condition": {
					"type": "string",
					"enum": [
						"NEW",
						"USED"
					]
				},
				"suitableAge": {
					"type": "string",
					"enum": [
						"0-3",
						"4-7",
						"8-12",
						"12+"
					]
				},
				"fee": {
					"type": "integer"
				},
				"value": {
					"type": "integer"
				},
				"imageUrls": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"model.CreateBorrowRequest": {
			"type": "object",
			"properties": {
				"itemId": {
					"type": "string"
				},
				"startDate": {
					"type": "string",
					"format": "date"
				},
				"endDate": {
					"type": "string",
					"format": "date"
				},
				"note": {
					"type": "string"
				}
			}
		},
		"model.RejectRequest": {
			"type": "object",
			"properties": {
				"reason": {
					"type": "string"
				}
			}
		},
		"model.DisputeRequest": {
			"type": "object",
			"properties": {
				"reason": {
					"type": "string"
				}
			}
		},
		"model.CompleteRequest": {
			"type": "object",
			"properties": {
				"returnDate": {
					"type": "string",
					"format": "date"
				}
			}
		},
		"model.RateRequest": {
			"type": "object",
			"properties": {
				"rating": {
					"type": "integer",
					"minimum": 0,
					"maximum": 5
				}
			}
		},
		"model.UpdateLocationRequest": {
			"type": "object",
			"properties": {
				"address": {
					"type": "string"
				},
				"latitude": {
					"type": "number"
				},
				"longitude": {
					"type": "number"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:		  "1.0",
	Host:			 "",
	BasePath:		 "/api/v1",
	Schemes:		  []string{},
	Title:			"Lending API",
	Description:	  "Neighbourhood toy lending: items, borrow requests, history and recommendations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:		"{{",
	RightDelim:	   "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
