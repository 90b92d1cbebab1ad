// Package swagger registers the OpenAPI document served at /swagger/*any.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Jan Server Team",
            "url": "https://github.com/janhq/jan-server"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/proposals/generate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Generates a proposal or outreach message. With stream=true the body is chunked plain text and the artifact id is returned in the X-Proposal-Id header.",
                "consumes": ["application/json"],
                "produces": ["application/json", "text/plain"],
                "tags": ["Proposals"],
                "summary": "Generate a proposal",
                "parameters": [
                    {"type": "boolean", "description": "Stream the generated text", "name": "stream", "in": "query"},
                    {"description": "Generation request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/requests.GenerateProposalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.GenerateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/platformerrors.HTTPErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/platformerrors.HTTPErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/platformerrors.HTTPErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/platformerrors.HTTPErrorResponse"}}
                }
            }
        },
        "/v1/proposals": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists the caller's proposals, newest first",
                "produces": ["application/json"],
                "tags": ["Proposals"],
                "summary": "List proposals",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Limit", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.ListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/platformerrors.HTTPErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/platformerrors.HTTPErrorResponse"}}
                }
            }
        },
        "/v1/proposals/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Proposals"],
                "summary": "Get a proposal",
                "parameters": [
                    {"type": "string", "description": "Proposal id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.ProposalResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/platformerrors.HTTPErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/platformerrors.HTTPErrorResponse"}}
                }
            }
        },
        "/v1/account": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the plan and the per-mode quota position of the caller",
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "Get the caller's account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.AccountResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/platformerrors.HTTPErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/platformerrors.HTTPErrorResponse"}}
                }
            }
        },
        "/v1/usage": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the token usage summary of the authenticated user, grouped by model",
                "produces": ["application/json"],
                "tags": ["Usage"],
                "summary": "Get current user's token usage",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tokenusage.UsageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/platformerrors.HTTPErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/platformerrors.HTTPErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "platformerrors.HTTPErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "platformerrors.HTTPErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/platformerrors.HTTPErrorDetail"}
            }
        },
        "requests.GenerateProposalRequest": {
            "type": "object",
            "required": ["input", "role"],
            "properties": {
                "contextNote": {"type": "string"},
                "goal": {"type": "string"},
                "goalNote": {"type": "string"},
                "industry": {"type": "string", "example": "Food & Beverage"},
                "input": {"type": "string", "example": "Bakery owner wants a new ordering site"},
                "makeClientFocused": {"type": "boolean"},
                "mode": {"type": "string", "example": "freelancer"},
                "priority": {"type": "string"},
                "priorityNote": {"type": "string"},
                "role": {"type": "string", "example": "Web developer"},
                "stream": {"type": "boolean"},
                "tone": {"type": "string", "example": "bold"}
            }
        },
        "responses.GenerateResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "isPro": {"type": "boolean"},
                "proposal": {"type": "string"},
                "sendReason": {"type": "string"},
                "sendStatus": {"type": "string"}
            }
        },
        "responses.ProposalResponse": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "goal": {"type": "string"},
                "id": {"type": "string"},
                "industry": {"type": "string"},
                "mode": {"type": "string"},
                "priority": {"type": "string"},
                "proposal": {"type": "string"},
                "role": {"type": "string"},
                "sendReason": {"type": "string"},
                "sendStatus": {"type": "string"},
                "tone": {"type": "string"}
            }
        },
        "responses.ListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/responses.ProposalResponse"}},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "responses.ModeUsage": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "mode": {"type": "string"},
                "remaining": {"type": "integer"},
                "used": {"type": "integer"}
            }
        },
        "responses.AccountResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "isPro": {"type": "boolean"},
                "plan": {"type": "string"},
                "quotas": {"type": "array", "items": {"$ref": "#/definitions/responses.ModeUsage"}}
            }
        },
        "tokenusage.UsageSummary": {
            "type": "object",
            "properties": {
                "estimated_cost_usd": {"type": "number"},
                "model": {"type": "string"},
                "request_count": {"type": "integer"},
                "total_completion_tokens": {"type": "integer"},
                "total_prompt_tokens": {"type": "integer"},
                "total_tokens": {"type": "integer"}
            }
        },
        "tokenusage.UsageResponse": {
            "type": "object",
            "properties": {
                "by_model": {"type": "array", "items": {"$ref": "#/definitions/tokenusage.UsageSummary"}},
                "total_usage": {"$ref": "#/definitions/tokenusage.UsageSummary"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Jan Server Proposal API",
	Description:      "Quota-gated proposal and outreach message generation with streaming support.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
