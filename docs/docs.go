// Package docs registers the OpenAPI description served at /swagger/.
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
    "paths": {
        "/dispatch": {
            "post": {
                "description": "Accepts a JSON message (pre-transcribed text or base64 audio) or raw audio bytes. The utterance runs through the override chain and the intent classifier; the resolved turn and Joey's replies are returned in the requested response mode.",
                "consumes": ["application/json", "audio/wav", "audio/ogg"],
                "produces": ["application/json"],
                "tags": ["dispatch"],
                "summary": "Resolve one utterance",
                "parameters": [
                    {
                        "description": "Dispatch request (JSON). For raw audio, POST the bytes directly with the appropriate Content-Type.",
                        "name": "message",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/message.Message"}
                    },
                    {
                        "type": "string",
                        "description": "Sender identifier (used with raw audio uploads)",
                        "name": "X-Joey-Source",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "none, text, audio or text+audio (used with raw audio uploads)",
                        "name": "X-Joey-Response-Mode",
                        "in": "header"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Resolved turn",
                        "schema": {"$ref": "#/definitions/message.DispatchResult"}
                    },
                    "400": {
                        "description": "Invalid request body or headers",
                        "schema": {"type": "string"}
                    },
                    "500": {
                        "description": "Internal processing error",
                        "schema": {"type": "string"}
                    }
                }
            }
        }
    },
    "definitions": {
        "message.Message": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string"},
                "audio": {"type": "string", "format": "byte"},
                "content_type": {"type": "string"},
                "text": {"type": "string"},
                "response_mode": {"type": "string", "enum": ["none", "text", "audio", "text+audio"]},
                "timestamp": {"type": "string", "format": "date-time"}
            }
        },
        "message.Entities": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "language": {"type": "string"},
                "payload": {"type": "string"}
            }
        },
        "message.Reply": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "lang": {"type": "string"}
            }
        },
        "message.TurnResult": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "utterance": {"type": "string"},
                "resolved_by": {"type": "string"},
                "intent": {"type": "string"},
                "confidence": {"type": "number"},
                "entities": {"$ref": "#/definitions/message.Entities"},
                "replies": {"type": "array", "items": {"$ref": "#/definitions/message.Reply"}},
                "stop": {"type": "boolean"},
                "detected_language": {"type": "string"},
                "active_language": {"type": "string"}
            }
        },
        "message.DispatchResult": {
            "type": "object",
            "properties": {
                "message_id": {"type": "string"},
                "transcript": {"type": "string"},
                "turn": {"$ref": "#/definitions/message.TurnResult"},
                "response_text": {"type": "string"},
                "response_audio": {"type": "string"},
                "response_content_type": {"type": "string"},
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Joey API",
	Description:      "Multilingual voice assistant turn pipeline.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
