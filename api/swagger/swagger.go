package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Captives Gateway API",
        "description": "Gateway in front of the captives registry: sections, local filtering, remote search and flyer export",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Captives", "description": "Record sections and mutations"},
        {"name": "Search", "description": "Remote relevance search"},
        {"name": "Auth", "description": "Upstream session management"},
        {"name": "Flyers", "description": "Printable flyer export"}
    ],
    "paths": {
        "/captives": {
            "get": {
                "tags": ["Captives"],
                "summary": "List records for a section",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "description": "searching, informed, deceased, reunited or archive"},
                    {"name": "user_id", "in": "query", "type": "integer"},
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "person_type", "in": "query", "type": "string"},
                    {"name": "region", "in": "query", "type": "string"},
                    {"name": "brigade", "in": "query", "type": "string"},
                    {"name": "circumstances", "in": "query", "type": "string"},
                    {"name": "appearance", "in": "query", "type": "string"},
                    {"name": "born_after", "in": "query", "type": "string"},
                    {"name": "born_before", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Captives"],
                "summary": "Create a record",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "name", "in": "formData", "type": "string"},
                    {"name": "person_type", "in": "formData", "type": "string"},
                    {"name": "brigade", "in": "formData", "type": "string"},
                    {"name": "status", "in": "formData", "type": "string"},
                    {"name": "region", "in": "formData", "type": "string"},
                    {"name": "settlement", "in": "formData", "type": "string"},
                    {"name": "circumstances", "in": "formData", "type": "string"},
                    {"name": "appearance", "in": "formData", "type": "string", "required": true},
                    {"name": "date_of_birth", "in": "formData", "type": "string"},
                    {"name": "picture", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/captives/{id}": {
            "get": {
                "tags": ["Captives"],
                "summary": "Fetch one record",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Captives"],
                "summary": "Update an owned record",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the owner"}
                }
            },
            "delete": {
                "tags": ["Captives"],
                "summary": "Delete an owned record",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the owner"}
                }
            }
        },
        "/search": {
            "get": {
                "tags": ["Search"],
                "summary": "Report the remote-search state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Search"],
                "summary": "Discard the remote-search working set",
                "responses": {
                    "204": {"description": "No content"}
                }
            }
        },
        "/search/appearance": {
            "post": {
                "tags": ["Search"],
                "summary": "Search records by appearance description",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AppearanceSearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Registry unavailable"}
                }
            }
        },
        "/search/photo": {
            "post": {
                "tags": ["Search"],
                "summary": "Search records by photo similarity",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "photo", "in": "formData", "type": "file", "required": true},
                    {"name": "status", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Open an upstream session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Bad credentials"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Close the upstream session",
                "responses": {
                    "204": {"description": "No content"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Create an account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Resolve the current account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Anonymous"}
                }
            }
        },
        "/captives/{id}/flyer": {
            "post": {
                "tags": ["Flyers"],
                "summary": "Queue a flyer render for a record",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/flyers/{id}": {
            "get": {
                "tags": ["Flyers"],
                "summary": "Report flyer job progress",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/flyers/download/{token}": {
            "get": {
                "tags": ["Flyers"],
                "summary": "Download a rendered flyer",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "PDF document"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "AppearanceSearchRequest": {
            "type": "object",
            "required": ["appearance"],
            "properties": {
                "appearance": {"type": "string"},
                "status": {"type": "string"}
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
        "RegisterRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "email": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"}
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
