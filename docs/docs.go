// Package docs registers the Swagger document served under /docs.
// Regenerate with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/chat": {
            "post": {
                "description": "Runs the message through the content guard and, when allowed, the travel assistant",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Send a chat message",
                "parameters": [
                    {
                        "description": "Message and session id",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.ChatRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ChatResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.LimitReachedResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/reset-chat": {
            "post": {
                "description": "Clears history and counters. Resetting an unknown session succeeds.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Reset a chat session",
                "parameters": [
                    {
                        "description": "Session id",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.ResetRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ResetResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/session-status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Session status",
                "parameters": [
                    {"type": "string", "description": "Session id", "name": "session_id", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionStatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/travel-destinations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Travel"],
                "summary": "List travel destinations",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DestinationsResponse"}}
                }
            }
        },
        "/api/functions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Travel"],
                "summary": "List travel functions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.FunctionsResponse"}}
                }
            }
        },
        "/api/health": {
            "get": {
                "description": "Returns the overall health status and component statuses",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Service healthy", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service unhealthy", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/api/ready": {
            "get": {
                "description": "Returns 200 if the service is ready to accept traffic",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Service ready", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service not ready", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/live": {
            "get": {
                "description": "Returns 200 if the service is alive",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "Service alive", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "dto.ChatRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "session_id": {"type": "string"}
            }
        },
        "dto.ChatResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "session_id": {"type": "string"},
                "function_called": {"type": "string"},
                "function_result": {"type": "object"},
                "function_args": {"type": "object"},
                "session_reset": {"type": "boolean"},
                "warnings_remaining": {"type": "integer"},
                "warnings": {"type": "integer"},
                "violations": {"type": "integer"},
                "blocked": {"type": "boolean"},
                "off_topic": {"type": "boolean"},
                "reason": {"type": "string"},
                "category": {"type": "string"},
                "travel_examples": {"type": "array", "items": {"type": "string"}},
                "retry": {"type": "boolean"}
            }
        },
        "dto.LimitReachedResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "action": {"type": "string"},
                "session_id": {"type": "string"}
            }
        },
        "dto.ResetRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"}
            }
        },
        "dto.ResetResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "session_reset": {"type": "boolean"}
            }
        },
        "dto.SessionStatusResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "session_active": {"type": "boolean"},
                "message_count": {"type": "integer"},
                "off_topic_warnings": {"type": "integer"},
                "security_violations": {"type": "integer"},
                "created_at": {"type": "string"}
            }
        },
        "dto.DestinationResponse": {
            "type": "object",
            "properties": {
                "city": {"type": "string"},
                "country": {"type": "string"},
                "hotels_available": {"type": "integer"},
                "attractions_available": {"type": "integer"}
            }
        },
        "dto.DestinationsResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "destinations": {"type": "array", "items": {"$ref": "#/definitions/dto.DestinationResponse"}},
                "total_cities": {"type": "integer"}
            }
        },
        "dto.FunctionResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "parameters": {"type": "object"}
            }
        },
        "dto.FunctionsResponse": {
            "type": "object",
            "properties": {
                "functions": {"type": "array", "items": {"$ref": "#/definitions/dto.FunctionResponse"}},
                "scope": {"type": "string"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "components": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Travel Agent API",
	Description:      "Travel planning chat assistant with a travel-only content guard and function calling.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
