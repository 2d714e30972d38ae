package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DevMatch Rotation API",
        "description": "Candidate batch rotation and assignment lifecycle service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Batches", "description": "Batch generation and refresh"},
        {"name": "Candidates", "description": "Developer accept/decline actions"},
        {"name": "Stats", "description": "Rotation summaries"},
        {"name": "Exports", "description": "Assignment history exports"},
        {"name": "Internal", "description": "Operational endpoints"}
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
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Dependencies unavailable"}
                }
            }
        },
        "/projects/{id}/batches": {
            "post": {
                "tags": ["Batches"],
                "summary": "Generate the first candidate batch for a project",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/GenerateBatchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Batch created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Project not found"},
                    "409": {"description": "Project state does not allow generation"},
                    "422": {"description": "No eligible candidates"}
                }
            }
        },
        "/projects/{id}/batches/refresh": {
            "post": {
                "tags": ["Batches"],
                "summary": "Replace the current batch with a freshly rotated one",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/GenerateBatchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Replacement batch created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Project not found"},
                    "409": {"description": "Project state does not allow generation"},
                    "422": {"description": "No eligible candidates"}
                }
            }
        },
        "/candidates/{id}/accept": {
            "post": {
                "tags": ["Candidates"],
                "summary": "Accept a candidate slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Not the invited developer"},
                    "404": {"description": "Candidate not found"},
                    "409": {"description": "Deadline passed, batch stale, or another developer won"}
                }
            }
        },
        "/candidates/{id}/reject": {
            "post": {
                "tags": ["Candidates"],
                "summary": "Decline a candidate slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Declined", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Not the invited developer"},
                    "404": {"description": "Candidate not found"},
                    "409": {"description": "Candidate no longer pending"}
                }
            }
        },
        "/projects/{id}/rotation-stats": {
            "get": {
                "tags": ["Stats"],
                "summary": "Rotation summary for a project",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Project not found"}
                }
            }
        },
        "/projects/{id}/assignments/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export a project's batch and candidate history",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Export file"},
                    "400": {"description": "Unsupported format"},
                    "404": {"description": "Project not found"}
                }
            }
        },
        "/internal/sweep": {
            "post": {
                "tags": ["Internal"],
                "summary": "Expire overdue candidates and refresh exhausted batches",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Sweep result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateBatchRequest": {
            "type": "object",
            "properties": {
                "quotas": {"$ref": "#/definitions/QuotaOverride"}
            }
        },
        "QuotaOverride": {
            "type": "object",
            "properties": {
                "fresher": {"type": "integer", "minimum": 0},
                "mid": {"type": "integer", "minimum": 0},
                "expert": {"type": "integer", "minimum": 0}
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
