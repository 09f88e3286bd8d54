package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "OBE Analytics API",
        "description": "Outcome-based education attainment analytics pipeline",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Scores", "description": "Marksheet ingestion"},
        {"name": "Attainment", "description": "CO/PO attainment calculation"},
        {"name": "Reports", "description": "Attainment read models and exports"},
        {"name": "Configuration", "description": "Per-course calculation configuration"},
        {"name": "GPA", "description": "Semester results, CGPA and ranking"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Return the authenticated principal",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/assessments/{assessmentId}/scores": {
            "post": {
                "tags": ["Scores"],
                "summary": "Ingest a parsed marksheet batch for an assessment",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "assessmentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IngestScoresRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/assessments/{assessmentId}/co-scores": {
            "post": {
                "tags": ["Attainment"],
                "summary": "Aggregate raw scores into per-student CO scores",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "assessmentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/assessments/{assessmentId}/co-attainment": {
            "post": {
                "tags": ["Attainment"],
                "summary": "Compute class-wide CO attainment for an assessment",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "assessmentId", "in": "path", "required": true, "type": "string"},
                    {"name": "threshold", "in": "query", "type": "number"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/final-co-attainment": {
            "post": {
                "tags": ["Attainment"],
                "summary": "Blend CIE/SEE/CES into final CO attainment snapshots",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/po-attainment": {
            "post": {
                "tags": ["Attainment"],
                "summary": "Derive PO attainment from the latest CO snapshots",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/overall-scores": {
            "post": {
                "tags": ["Attainment"],
                "summary": "Compute per-student weighted totals and letter grades",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/calculate": {
            "post": {
                "tags": ["Attainment"],
                "summary": "Run the full attainment pipeline for a course",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "assessmentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/attainment": {
            "get": {
                "tags": ["Reports"],
                "summary": "Course attainment dashboard summary",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/cos/{coId}/trend": {
            "get": {
                "tags": ["Reports"],
                "summary": "Snapshot history for one course outcome",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "coId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/attainment/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the CO/PO attainment report",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/courses/{courseId}/grades/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the per-student grade sheet as CSV",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/courses/{courseId}/config": {
            "get": {
                "tags": ["Configuration"],
                "summary": "Fetch a course's calculation configuration",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Configuration"],
                "summary": "Replace a course's calculation configuration",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCourseConfigRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/semester/subjects": {
            "post": {
                "tags": ["GPA"],
                "summary": "Register a course into a student's semester",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterSubjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Credit cap exceeded"}
                }
            }
        },
        "/semester/sgpa": {
            "post": {
                "tags": ["GPA"],
                "summary": "Calculate and persist one semester's SGPA",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CalculateSGPARequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/semester/cgpa/recalculate": {
            "post": {
                "tags": ["GPA"],
                "summary": "Recalculate CGPA for every student with semester results",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{usn}/cgpa": {
            "post": {
                "tags": ["GPA"],
                "summary": "Recalculate a student's cumulative CGPA",
                "parameters": [
                    {"name": "usn", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No semester results"}
                }
            }
        },
        "/students/{usn}/rank": {
            "get": {
                "tags": ["GPA"],
                "summary": "Class rank and percentile for a student",
                "parameters": [
                    {"name": "usn", "in": "path", "required": true, "type": "string"},
                    {"name": "department", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student has no ranked CGPA"}
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
        "IngestScoresRequest": {
            "type": "object",
            "required": ["rows"],
            "properties": {
                "rows": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "student_usn": {"type": "string"},
                            "marks": {"type": "object", "additionalProperties": {"type": "string"}}
                        }
                    }
                }
            }
        },
        "UpdateCourseConfigRequest": {
            "type": "object",
            "properties": {
                "assessment_weights": {"type": "object", "additionalProperties": {"type": "number"}},
                "cie_weight": {"type": "number"},
                "see_weight": {"type": "number"},
                "ces_weight": {"type": "number"},
                "attainment_threshold": {"type": "number"},
                "grade_boundaries": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "letter": {"type": "string"},
                            "min_percentage": {"type": "number"}
                        }
                    }
                }
            }
        },
        "RegisterSubjectRequest": {
            "type": "object",
            "required": ["student_id", "semester", "academic_year", "course_code", "course_name", "credits"],
            "properties": {
                "student_id": {"type": "string"},
                "semester": {"type": "integer"},
                "academic_year": {"type": "string"},
                "course_code": {"type": "string"},
                "course_name": {"type": "string"},
                "credits": {"type": "integer"}
            }
        },
        "CalculateSGPARequest": {
            "type": "object",
            "required": ["student_id", "semester", "academic_year"],
            "properties": {
                "student_id": {"type": "string"},
                "semester": {"type": "integer"},
                "academic_year": {"type": "string"}
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
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"}
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
