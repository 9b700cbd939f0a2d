package models

import "encoding/json"

// MessageType identifies a websocket message.
type MessageType string

const (
	MessageTypeSetProperty    MessageType = "setProperty"
	MessageTypePropertyStatus MessageType = "propertyStatus"
	MessageTypeError          MessageType = "error"
)

// PropertyStatus maps property names to their latest values.
type PropertyStatus map[string]interface{}

// ThingMessage is the envelope for every websocket message in both directions.
type ThingMessage struct {
	MessageType MessageType     `json:"messageType"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// ErrorData is the payload of an error message.
type ErrorData struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
