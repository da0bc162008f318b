package types

import (
	"time"
)

// Message is the envelope carried on the internal bus and, serialized,
// on the cloud uplink.
type Message struct {
	Timestamp   time.Time   `json:"timestamp"`
	From        string      `json:"from"`
	To          string      `json:"to"`
	MessageType string      `json:"message_type"`
	Message     interface{} `json:"message"`
}

func CreateMessage(messageType, from, to string, message interface{}) Message {
	return Message{
		time.Now().UTC(),
		from,
		to,
		messageType,
		message,
	}
}

func CreateLocalMessage(messageType string, message interface{}) Message {
	return CreateMessage(messageType, "self", "self", message)
}
