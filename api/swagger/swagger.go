package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Edufy Roster API",
        "description": "Scheduling and roster backend for the Edufy tutoring platform",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Sign-in wizard and session lifecycle"},
        {"name": "Users", "description": "Admin roster management"},
        {"name": "Schedules", "description": "Dashboard schedule queries"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check reporting the active persistence backend",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/auth/lookup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Resolve the next sign-in step for an email",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LookupRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Email not registered for the role"},
                    "409": {"description": "Email already registered (sign-up mode)"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Sign in with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid password"},
                    "409": {"description": "Password not set yet"}
                }
            }
        },
        "/api/v1/auth/activate": {
            "post": {
                "tags": ["Auth"],
                "summary": "Complete first-login password setup",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActivateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Password already set"}
                }
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Self-service sign-up",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/api/v1/auth/session": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "No active session"}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List roster accounts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string", "enum": ["student", "teacher"]},
                    {"name": "include_admins", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Add a roster account",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered for the role"}
                }
            }
        },
        "/api/v1/users/{id}": {
            "put": {
                "tags": ["Users"],
                "summary": "Update a roster account",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "User not found"}
                }
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Remove a roster account",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/api/v1/users/{id}/reset-password": {
            "post": {
                "tags": ["Users"],
                "summary": "Reset an account back to pending setup",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/api/v1/users/export": {
            "get": {
                "tags": ["Users"],
                "summary": "Export the roster as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/api/v1/schedules/students/{id}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List a student's booked class sessions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the session owner"}
                }
            }
        },
        "/api/v1/schedules/teachers/{id}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List the class sessions a teacher gives",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the session owner"}
                }
            }
        }
    },
    "definitions": {
        "LookupRequest": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["student", "teacher"]},
                "email": {"type": "string"},
                "mode": {"type": "string", "enum": ["sign_in", "sign_up"]}
            },
            "required": ["role", "email"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["student", "teacher"]},
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["role", "email", "password"]
        },
        "ActivateRequest": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["student", "teacher"]},
                "email": {"type": "string"},
                "new_password": {"type": "string"},
                "confirm_password": {"type": "string"}
            },
            "required": ["role", "email", "new_password", "confirm_password"]
        },
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["student", "teacher"]},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "subjects": {"type": "string"},
                "new_password": {"type": "string"},
                "confirm_password": {"type": "string"}
            },
            "required": ["role", "email", "name", "subjects", "new_password", "confirm_password"]
        },
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["student", "teacher"]},
                "name": {"type": "string"},
                "subjects": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["email", "role", "name"]
        },
        "UpdateUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["student", "teacher"]},
                "subjects": {"type": "array", "items": {"type": "string"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
