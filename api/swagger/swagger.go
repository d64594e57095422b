package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ASSA Portal API",
        "description": "Multi-tenant invoicing portal: admin and company authentication, archive lifecycle and activity journal",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Admin login, refresh and password change"},
        {"name": "Super Admin", "description": "Bootstrap login and admin provisioning"},
        {"name": "Admins", "description": "Admin directory and archive lifecycle"},
        {"name": "Companies", "description": "Company OTP onboarding, login and directory"},
        {"name": "Invoices", "description": "Invoice archive lifecycle"},
        {"name": "Archives", "description": "Append-only archive records and exports"},
        {"name": "Journal", "description": "Activity journal"}
    ],
    "paths": {
        "/admins/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Admin login",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/Credentials"}}],
                "responses": {
                    "200": {"description": "Tokens and principal", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Account archived", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admins/logout": {
            "post": {"tags": ["Auth"], "summary": "Admin logout", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Logged out"}}}
        },
        "/admins/update-password": {
            "post": {"tags": ["Auth"], "summary": "Change admin password", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Password changed"}, "401": {"description": "Current password incorrect"}}}
        },
        "/auth/token/refresh": {
            "post": {"tags": ["Auth"], "summary": "Exchange a refresh token", "responses": {"200": {"description": "New access token"}, "401": {"description": "Refresh token invalid or expired"}}}
        },
        "/auth/super/login": {
            "post": {"tags": ["Super Admin"], "summary": "Super admin bootstrap login", "responses": {"200": {"description": "Tokens"}, "401": {"description": "Invalid secret"}, "403": {"description": "IP not allowed"}, "429": {"description": "Too many attempts"}}}
        },
        "/auth/super/create-admin": {
            "post": {"tags": ["Super Admin"], "summary": "Create an admin", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Admin created"}, "403": {"description": "Caller is not the super admin"}, "409": {"description": "Email already used"}}}
        },
        "/admins": {
            "get": {"tags": ["Admins"], "summary": "List active admins", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Admins"}}}
        },
        "/admins/archived": {
            "get": {"tags": ["Admins"], "summary": "List archived admins", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Admins"}}}
        },
        "/admins/{id}/archive": {
            "patch": {"tags": ["Admins"], "summary": "Archive an admin", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Archive outcome"}, "404": {"description": "Not found"}}}
        },
        "/admins/{id}/restore": {
            "patch": {"tags": ["Admins"], "summary": "Restore an admin", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Archive outcome"}, "404": {"description": "Not found"}}}
        },
        "/companies/first-login-otp": {
            "post": {"tags": ["Companies"], "summary": "Request a first-login OTP", "responses": {"200": {"description": "OTP issued, email_sent reports delivery"}, "404": {"description": "Unknown or archived company"}}}
        },
        "/companies/validate-otp": {
            "post": {"tags": ["Companies"], "summary": "Validate a first-login OTP", "responses": {"200": {"description": "Tokens"}, "400": {"description": "OTP missing, invalid or expired"}}}
        },
        "/companies/login": {
            "post": {"tags": ["Companies"], "summary": "Company login", "responses": {"200": {"description": "Tokens"}, "401": {"description": "Invalid credentials"}}}
        },
        "/companies/me": {
            "get": {"tags": ["Companies"], "summary": "Current company profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Company"}}},
            "put": {"tags": ["Companies"], "summary": "Edit the current company profile", "consumes": ["multipart/form-data", "application/json"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Company"}, "409": {"description": "Email already used"}}}
        },
        "/companies/update-password": {
            "put": {"tags": ["Companies"], "summary": "Change company password", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Password changed"}}}
        },
        "/companies": {
            "get": {"tags": ["Companies"], "summary": "List active companies", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Companies"}}},
            "post": {"tags": ["Companies"], "summary": "Create a company", "consumes": ["multipart/form-data"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Company created"}, "409": {"description": "Email already used"}, "413": {"description": "Logo too large"}}}
        },
        "/companies/archived": {
            "get": {"tags": ["Companies"], "summary": "List archived companies", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Companies"}}}
        },
        "/companies/{id}": {
            "get": {"tags": ["Companies"], "summary": "Get a company", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Company"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["Companies"], "summary": "Edit a company", "consumes": ["multipart/form-data", "application/json"], "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Company"}, "404": {"description": "Not found"}, "409": {"description": "Email already used or company archived"}}},
            "delete": {"tags": ["Companies"], "summary": "Archive a company with its invoices and admins", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Archive outcome"}, "404": {"description": "Not found"}}}
        },
        "/companies/{id}/restore": {
            "patch": {"tags": ["Companies"], "summary": "Restore a company", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Archive outcome"}}}
        },
        "/invoices/{id}": {
            "delete": {"tags": ["Invoices"], "summary": "Archive an invoice", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Archive outcome"}, "403": {"description": "Invoice belongs to another company"}}}
        },
        "/invoices/{id}/restore": {
            "patch": {"tags": ["Invoices"], "summary": "Restore an invoice", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Archive outcome"}}}
        },
        "/archives": {
            "get": {"tags": ["Archives"], "summary": "List archive records", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Records"}}}
        },
        "/archives/export": {
            "get": {"tags": ["Archives"], "summary": "Export archive records", "security": [{"BearerAuth": []}], "parameters": [{"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}], "produces": ["text/csv", "application/pdf"], "responses": {"200": {"description": "File"}}}
        },
        "/archives/reference/{reference}": {
            "get": {"tags": ["Archives"], "summary": "Archive history of one entity", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "reference", "required": true, "type": "string"}], "responses": {"200": {"description": "Records"}}}
        },
        "/journal": {
            "get": {"tags": ["Journal"], "summary": "List journal entries", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Entries"}}}
        },
        "/journal/recent": {
            "get": {"tags": ["Journal"], "summary": "Most recent journal entries", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Entries"}}}
        },
        "/journal/admin/{id}": {
            "get": {"tags": ["Journal"], "summary": "Journal entries of an admin", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Entries"}}}
        },
        "/journal/company/{id}": {
            "get": {"tags": ["Journal"], "summary": "Journal entries of a company", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Entries"}}}
        }
    },
    "definitions": {
        "Credentials": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
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
                "success": {"type": "boolean"},
                "message": {"type": "string"},
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
