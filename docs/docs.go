package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/progressions": {
            "get": {
                "tags": ["progressions"],
                "summary": "List progressions",
                "description": "List every stored chord progression in order",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/entities.Progression"}}
                    },
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "tags": ["progressions"],
                "summary": "Create a progression",
                "description": "Store a new chord progression under a freshly generated ID",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Progression data",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.ProgressionRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/entities.Progression"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/progressions/{id}": {
            "put": {
                "tags": ["progressions"],
                "summary": "Update a progression",
                "description": "Replace the contents of a progression, keeping its ID and position",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Progression ID", "name": "id", "in": "path", "required": true},
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Progression data",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.ProgressionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entities.Progression"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["progressions"],
                "summary": "Delete a progression",
                "parameters": [
                    {"type": "string", "description": "Progression ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/shapes": {
            "get": {
                "tags": ["shapes"],
                "summary": "List chord shapes",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/entities.ChordShape"}}
                    },
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "tags": ["shapes"],
                "summary": "Create a chord shape",
                "description": "Store a new guitar chord diagram. A client supplied id is ignored.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Shape data",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.ShapeRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/entities.ChordShape"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/shapes/{id}": {
            "put": {
                "tags": ["shapes"],
                "summary": "Update a chord shape",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Shape ID", "name": "id", "in": "path", "required": true},
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Shape data",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.ShapeRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entities.ChordShape"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["shapes"],
                "summary": "Delete a chord shape",
                "parameters": [
                    {"type": "string", "description": "Shape ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "entities.Chord": {
            "type": "object",
            "properties": {
                "root": {"type": "string"},
                "quality": {"type": "string"},
                "label": {"type": "string"},
                "bass": {"type": "string", "x-nullable": true}
            }
        },
        "entities.ScaleInfo": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "mode": {"type": "string"}
            }
        },
        "entities.Progression": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "prg-3f2a9c1b7d4e"},
                "name": {"type": "string"},
                "scale": {"$ref": "#/definitions/entities.ScaleInfo"},
                "chords": {"type": "array", "items": {"$ref": "#/definitions/entities.Chord"}}
            }
        },
        "entities.Diagram": {
            "type": "object",
            "properties": {
                "startFret": {"type": "integer", "minimum": 1},
                "frets": {"type": "array", "minItems": 6, "maxItems": 6, "items": {"type": "integer"}}
            }
        },
        "entities.ChordShape": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "shape-0b6f45e2a913"},
                "chord": {"type": "string"},
                "position": {"type": "string", "x-nullable": true},
                "diagram": {"$ref": "#/definitions/entities.Diagram"}
            }
        },
        "ports.ChordInput": {
            "type": "object",
            "required": ["root", "quality", "label"],
            "properties": {
                "root": {"type": "string"},
                "quality": {"type": "string"},
                "label": {"type": "string"},
                "bass": {"type": "string"}
            }
        },
        "ports.ScaleInput": {
            "type": "object",
            "required": ["key", "mode"],
            "properties": {
                "key": {"type": "string"},
                "mode": {"type": "string"}
            }
        },
        "ports.ProgressionRequest": {
            "type": "object",
            "required": ["name", "scale", "chords"],
            "properties": {
                "name": {"type": "string"},
                "scale": {"$ref": "#/definitions/ports.ScaleInput"},
                "chords": {"type": "array", "items": {"$ref": "#/definitions/ports.ChordInput"}}
            }
        },
        "ports.DiagramInput": {
            "type": "object",
            "required": ["startFret", "frets"],
            "properties": {
                "startFret": {"type": "integer", "minimum": 1},
                "frets": {"type": "array", "minItems": 6, "maxItems": 6, "items": {"type": "integer"}}
            }
        },
        "ports.ShapeRequest": {
            "type": "object",
            "required": ["chord", "diagram"],
            "properties": {
                "id": {"type": "string", "description": "ignored"},
                "chord": {"type": "string"},
                "position": {"type": "string"},
                "diagram": {"$ref": "#/definitions/ports.DiagramInput"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "ChordCraft API",
	Description:      "Store chord progressions and guitar chord shapes",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
