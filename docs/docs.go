// Package docs holds the OpenAPI description served under /swagger. Regenerate with `swag init -g cmd/api/main.go`.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}
                }
            }
        },
        "/phone/normalize": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["phone"],
                "summary": "Normalize a phone number",
                "parameters": [
                    {"description": "Phone number as typed", "name": "data", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.NormalizePhoneRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.NormalizePhoneResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/otp/sessions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["otp"],
                "summary": "Start phone verification",
                "parameters": [
                    {"description": "Phone number", "name": "data", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.StartOTPSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.OTPSession"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/otp/sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["otp"],
                "summary": "Get a verification session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.OTPSession"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["otp"],
                "summary": "Close a verification session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/otp/sessions/{id}/digits/{index}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["otp"],
                "summary": "Enter one digit of the code",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Slot index (0-5)", "name": "index", "in": "path", "required": true},
                    {"description": "Digit, empty to clear", "name": "data", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.EnterDigitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.FocusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/otp/sessions/{id}/backspace/{index}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["otp"],
                "summary": "Backspace in a code slot",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Slot index (0-5)", "name": "index", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.FocusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/otp/sessions/{id}/submit": {
            "post": {
                "produces": ["application/json"],
                "tags": ["otp"],
                "summary": "Verify the entered code",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.OTPSession"}},
                    "400": {"description": "Incomplete code", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Another request is in progress", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Code rejected", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/otp/sessions/{id}/resend": {
            "post": {
                "produces": ["application/json"],
                "tags": ["otp"],
                "summary": "Resend the verification code",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.OTPSession"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Countdown still running", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/otp/sessions/{id}/token": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get an access token for a verified phone",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AccessToken"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Phone not verified yet", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get an access token after signup",
                "parameters": [
                    {"description": "Registration token", "name": "data", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.AccessTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AccessToken"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["signup"],
                "summary": "Create an account",
                "parameters": [
                    {"description": "Signup form", "name": "data", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.SignupStarted"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/signup/{id}/complete": {
            "post": {
                "produces": ["application/json"],
                "tags": ["signup"],
                "summary": "Finish signup",
                "parameters": [{"type": "string", "description": "Session ID returned by POST /signup", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SignupCompleted"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Phone not verified yet, or not a signup session", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/coupons/transfer": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["coupons"],
                "summary": "Send coupons",
                "parameters": [
                    {"description": "Transfer", "name": "data", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.TransferRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TransferResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/coupons/balance/{phone}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["coupons"],
                "summary": "Coupon balance",
                "parameters": [{"type": "string", "description": "Phone number", "name": "phone", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Balance"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "services": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "models.NormalizePhoneRequest": {
            "type": "object",
            "required": ["phone"],
            "properties": {"phone": {"type": "string"}}
        },
        "models.NormalizePhoneResponse": {
            "type": "object",
            "properties": {
                "acceptable": {"type": "boolean"},
                "canonical": {"type": "string"},
                "carrier": {"type": "string"},
                "display": {"type": "string"},
                "input": {"type": "string"},
                "wallet": {"type": "string"}
            }
        },
        "models.StartOTPSessionRequest": {
            "type": "object",
            "required": ["phone"],
            "properties": {"phone": {"type": "string"}}
        },
        "models.EnterDigitRequest": {
            "type": "object",
            "properties": {"digit": {"type": "string"}}
        },
        "models.OTPSession": {
            "type": "object",
            "properties": {
                "can_resend": {"type": "boolean"},
                "code": {"type": "array", "items": {"type": "string"}},
                "countdown_seconds": {"type": "integer"},
                "id": {"type": "string"},
                "last_error": {"type": "string"},
                "next_step": {"type": "string"},
                "next_step_payload": {"type": "object", "additionalProperties": {"type": "string"}},
                "phone": {"type": "string"},
                "ready": {"type": "boolean"},
                "status": {"type": "string", "enum": ["idle", "sending", "verifying", "succeeded", "failed"]},
                "updated_at": {"type": "string"}
            }
        },
        "models.FocusResponse": {
            "type": "object",
            "properties": {
                "focus": {"type": "integer"},
                "session": {"$ref": "#/definitions/models.OTPSession"}
            }
        },
        "models.SignupRequest": {
            "type": "object",
            "required": ["confirm_pin", "full_name", "phone", "pin"],
            "properties": {
                "confirm_pin": {"type": "string"},
                "full_name": {"type": "string"},
                "phone": {"type": "string"},
                "pin": {"type": "string"}
            }
        },
        "models.SignupStarted": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "full_name": {"type": "string"},
                "phone": {"type": "string"},
                "session": {"$ref": "#/definitions/models.OTPSession"},
                "session_id": {"type": "string"}
            }
        },
        "models.SignupCompleted": {
            "type": "object",
            "properties": {
                "next_step": {"type": "string"},
                "phone": {"type": "string"},
                "registration_token": {"type": "string"}
            }
        },
        "models.TransferRequest": {
            "type": "object",
            "required": ["amount", "to"],
            "properties": {
                "amount": {"type": "string"},
                "from": {"type": "string"},
                "to": {"type": "string"}
            }
        },
        "models.AccessTokenRequest": {
            "type": "object",
            "required": ["registration_token"],
            "properties": {"registration_token": {"type": "string"}}
        },
        "models.AccessToken": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "expires_at": {"type": "string"},
                "phone": {"type": "string"},
                "token_type": {"type": "string"}
            }
        },
        "models.TransferResult": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "from": {"type": "string"},
                "timestamp": {"type": "string"},
                "to": {"type": "string"}
            }
        },
        "models.Balance": {
            "type": "object",
            "properties": {
                "balance": {"type": "string"},
                "balance_cents": {"type": "integer"},
                "phone": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "myChangeX Wallet API",
	Description:      "Phone verification, signup and coupon transfers for the myChangeX wallet.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
