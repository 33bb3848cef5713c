// Package docs registers the OpenAPI description of the Seva Kendra portal API
// with swag so echo-swagger can serve it under /swagger/.
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
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/otp": {
            "post": {"tags": ["auth"], "summary": "Request a sign-in code", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}, "503": {"description": "Service Unavailable"}}}
        },
        "/auth/otp/verify": {
            "post": {"tags": ["auth"], "summary": "Verify a sign-in code", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Provider login", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/auth/logout": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Sign out", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/auth/session": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current session", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/auth/metadata": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Update profile name", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/v1/session/stream": {
            "get": {"tags": ["auth"], "summary": "Stream access decisions", "produces": ["text/event-stream"], "parameters": [{"type": "string", "name": "view", "in": "query"}, {"type": "string", "name": "access_token", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/applications": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "List my recent applications", "produces": ["application/json"], "parameters": [{"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Submit an application", "consumes": ["multipart/form-data"], "produces": ["application/json"], "parameters": [{"type": "string", "name": "Idempotency-Key", "in": "header"}, {"type": "file", "name": "citizenship_front", "in": "formData", "required": true}, {"type": "file", "name": "citizenship_back", "in": "formData", "required": true}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}, "503": {"description": "Service Unavailable"}}}
        },
        "/v1/applications/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Get one of my applications", "produces": ["application/json"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/v1/admin/applications": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "List all applications", "produces": ["application/json"], "parameters": [{"type": "string", "name": "status", "in": "query"}, {"type": "string", "name": "service", "in": "query"}, {"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/v1/admin/applications/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Get an application for review", "produces": ["application/json"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/v1/admin/applications/{id}/status": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Change the status of an application", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/v1/admin/providers": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Create a service provider", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/health": {
            "get": {"tags": ["health"], "summary": "Liveness probe", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/health/ready": {
            "get": {"tags": ["health"], "summary": "Readiness probe", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Seva Kendra Portal API",
	Description:      "Citizen applications for government services and their review by service providers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
