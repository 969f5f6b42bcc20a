package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Faculty Admin API",
        "description": "Faculty administration, work-log validation and billing service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token lifecycle"},
        {"name": "Faculty", "description": "Faculty profile management"},
        {"name": "WorkLogs", "description": "Work log entries and validation runs"},
        {"name": "Timetable", "description": "Weekly slots and conflict probes"},
        {"name": "Billing", "description": "Monthly salary records"},
        {"name": "Analytics", "description": "Workload and salary aggregates"},
        {"name": "Reports", "description": "Asynchronous report exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculties": {
            "get": {
                "tags": ["Faculty"],
                "summary": "List faculty profiles",
                "parameters": [
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "designation", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Faculty"],
                "summary": "Create faculty profile with login account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateFacultyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculties/{id}": {
            "get": {
                "tags": ["Faculty"],
                "summary": "Get faculty profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Faculty"],
                "summary": "Update faculty profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateFacultyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Faculty"],
                "summary": "Delete faculty profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/work-logs": {
            "get": {
                "tags": ["WorkLogs"],
                "summary": "List work logs",
                "parameters": [
                    {"name": "facultyId", "in": "query", "type": "string"},
                    {"name": "startDate", "in": "query", "type": "string"},
                    {"name": "endDate", "in": "query", "type": "string"},
                    {"name": "activityType", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["WorkLogs"],
                "summary": "Create work log entry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateWorkLogRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/work-logs/validate": {
            "post": {
                "tags": ["WorkLogs"],
                "summary": "Run the validation engine over a faculty's work logs",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateWorkLogsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Validation result", "schema": {"$ref": "#/definitions/ValidationResult"}}
                }
            }
        },
        "/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List timetable slots",
                "parameters": [
                    {"name": "facultyId", "in": "query", "type": "string"},
                    {"name": "semesterId", "in": "query", "type": "string"},
                    {"name": "day", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Timetable"],
                "summary": "Create timetable slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/conflict-check": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Probe a candidate slot for scheduling conflicts",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "Conflict result", "schema": {"$ref": "#/definitions/ConflictResult"}}
                }
            }
        },
        "/billing": {
            "get": {
                "tags": ["Billing"],
                "summary": "List billing records",
                "parameters": [
                    {"name": "facultyId", "in": "query", "type": "string"},
                    {"name": "month", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/billing/generate": {
            "post": {
                "tags": ["Billing"],
                "summary": "Generate a salary record for a faculty-month",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateBillingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Record already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/workload": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Per-faculty workload summaries",
                "parameters": [
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "designation", "in": "query", "type": "string"},
                    {"name": "month", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report export job",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a completed report artifact",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Artifact stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refreshToken"],
            "properties": {
                "refreshToken": {"type": "string"}
            }
        },
        "CreateFacultyRequest": {"type": "object"},
        "UpdateFacultyRequest": {"type": "object"},
        "CreateWorkLogRequest": {"type": "object"},
        "ValidateWorkLogsRequest": {
            "type": "object",
            "required": ["facultyId"],
            "properties": {
                "facultyId": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"}
            }
        },
        "CreateTimetableRequest": {"type": "object"},
        "ConflictCheckRequest": {
            "type": "object",
            "required": ["facultyId", "dayOfWeek", "startTime", "endTime"],
            "properties": {
                "facultyId": {"type": "string"},
                "semesterId": {"type": "string"},
                "dayOfWeek": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "excludeId": {"type": "string"}
            }
        },
        "GenerateBillingRequest": {"type": "object"},
        "CreateReportRequest": {"type": "object"},
        "ValidationResult": {
            "type": "object",
            "properties": {
                "isValid": {"type": "boolean"},
                "issues": {"type": "array", "items": {"type": "object"}},
                "stats": {"type": "object"}
            }
        },
        "ConflictResult": {
            "type": "object",
            "properties": {
                "hasConflict": {"type": "boolean"},
                "conflicts": {"type": "array", "items": {"type": "object"}},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"}
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
