package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Volunteer Hub API",
        "description": "Events, volunteer applications and donations for NGOs, volunteers and corporate donors.",
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
        {"name": "Auth", "description": "Registration and JWT tokens"},
        {"name": "Profiles", "description": "User profiles"},
        {"name": "Events", "description": "NGO events"},
        {"name": "Applications", "description": "Volunteer applications"},
        {"name": "Certificates", "description": "Participation certificates"},
        {"name": "Donations", "description": "Donations to NGOs"},
        {"name": "Contact", "description": "Public contact form"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"summary": "Readiness check", "responses": {"200": {"description": "Ready"}, "503": {"description": "A dependency is unreachable"}}}
        },
        "/metrics": {
            "get": {"summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}
        },
        "/auth/users/": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a user",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/users/me/": {
            "get": {"tags": ["Auth"], "summary": "Current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/auth/check_user/": {
            "post": {
                "tags": ["Auth"],
                "summary": "Check whether a username is registered",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"username": {"type": "string"}}}}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/jwt/create/": {
            "post": {
                "tags": ["Auth"],
                "summary": "Obtain an access and refresh token pair",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenPair"}}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/auth/jwt/refresh/": {
            "post": {"tags": ["Auth"], "summary": "Rotate a refresh token", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenPair"}}, "401": {"description": "Invalid token"}}}
        },
        "/auth/jwt/verify/": {
            "post": {"tags": ["Auth"], "summary": "Verify an access token", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid token"}}}
        },
        "/auth/logout/": {
            "post": {"tags": ["Auth"], "summary": "Revoke a refresh token", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/contact/": {
            "post": {
                "tags": ["Contact"],
                "summary": "Send a contact message",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContactRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}, "429": {"description": "Rate limited"}}
            }
        },
        "/api/events/": {
            "get": {
                "tags": ["Events"],
                "summary": "List published events",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create an event",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}, "403": {"description": "Only NGOs can create events"}}
            }
        },
        "/api/events/mine/": {
            "get": {"tags": ["Events"], "summary": "List the caller's events including drafts", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/api/events/{id}/": {
            "get": {"tags": ["Events"], "summary": "Retrieve an event", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["Events"], "summary": "Replace an event", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "patch": {"tags": ["Events"], "summary": "Update an event", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["Events"], "summary": "Delete an event and its applications", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}}}
        },
        "/api/applications/": {
            "get": {"tags": ["Applications"], "summary": "List applications visible to the caller", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["Applications"],
                "summary": "Apply to an event",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplicationRequest"}}],
                "responses": {"201": {"description": "Created"}, "403": {"description": "Only volunteers can apply"}, "409": {"description": "Already applied"}}
            }
        },
        "/api/applications/{id}/": {
            "get": {"tags": ["Applications"], "summary": "Retrieve an application", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "patch": {"tags": ["Applications"], "summary": "Approve or reject an application", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid status"}}},
            "delete": {"tags": ["Applications"], "summary": "Withdraw a pending application", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/applications/{id}/certificate/": {
            "post": {"tags": ["Certificates"], "summary": "Queue a participation certificate", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"202": {"description": "Accepted"}, "503": {"description": "Queue unavailable"}}}
        },
        "/api/certificates/{token}": {
            "get": {"tags": ["Certificates"], "summary": "Download a signed certificate", "produces": ["application/pdf"], "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "PDF"}, "404": {"description": "Unknown or expired link"}}}
        },
        "/api/donations/": {
            "get": {"tags": ["Donations"], "summary": "List donations visible to the caller", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["Donations"],
                "summary": "Record a donation",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DonationRequest"}}],
                "responses": {"201": {"description": "Created"}, "403": {"description": "NGOs cannot donate"}, "409": {"description": "Duplicate transaction"}}
            }
        },
        "/api/donations/export/": {
            "get": {"tags": ["Donations"], "summary": "Export donations", "security": [{"BearerAuth": []}], "produces": ["text/csv", "application/pdf"], "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}], "responses": {"200": {"description": "File"}}}
        },
        "/api/donations/{id}/": {
            "get": {"tags": ["Donations"], "summary": "Retrieve a donation", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/api/profile/": {
            "get": {"tags": ["Profiles"], "summary": "List profiles visible to the caller", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/profile/{id}/": {
            "get": {"tags": ["Profiles"], "summary": "Retrieve a profile", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["Profiles"], "summary": "Replace a profile", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["Profiles"], "summary": "Update a profile", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Profiles"], "summary": "Delete a profile", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Admins only"}}}
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["username", "email", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "email": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "role": {"type": "string", "enum": ["ngo", "volunteer", "corporate"]}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "TokenPair": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "expires_in": {"type": "integer"}
            }
        },
        "EventRequest": {
            "type": "object",
            "required": ["title", "description", "date", "start_time", "end_time", "location"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "date": {"type": "string", "format": "date-time", "description": "RFC 3339 timestamp or YYYY-MM-DD"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "is_published": {"type": "boolean"}
            }
        },
        "ApplicationRequest": {
            "type": "object",
            "required": ["event"],
            "properties": {
                "event": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "DonationRequest": {
            "type": "object",
            "required": ["ngo", "amount"],
            "properties": {
                "ngo": {"type": "string"},
                "amount": {"type": "string", "example": "250.00"},
                "message": {"type": "string"},
                "transaction_id": {"type": "string"}
            }
        },
        "ContactRequest": {
            "type": "object",
            "required": ["name", "email", "message"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "subject": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
