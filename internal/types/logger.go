package types

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

type logger struct {
}

// NewLogger returns a handler that prints every bus message except the
// high-rate pose stream, so a mission timeline can be reconstructed from
// the process log.
func NewLogger() MessageHandler {
	return &logger{}
}

func (l *logger) Receive(message Message) {
	if message.MessageType == "pose" {
		return
	}

	b, _ := json.Marshal(message.Message)
	log.Printf("Message: %s (%s -> %s): %s", message.MessageType, message.From, message.To, string(b))
}

func (l *logger) Run(ctx context.Context, wg *sync.WaitGroup, post PostFn) {
}
