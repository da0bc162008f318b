package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	uuid "github.com/google/uuid"

	"github.com/aeroloop/guidanceengine/internal/types"
)

const (
	qos    = 1
	retain = false
)

type uplinkEvent struct {
	MessageID string `json:"message_id"`
	types.Message
}

type uplink struct {
	mqttClient mqtt.Client
	deviceID   string
	inbox      chan types.Message
}

// NewUplink mirrors guidance events to the cloud so an operator can
// reconstruct the mission timeline remotely. The pose stream is not
// mirrored; it would swamp the link.
func NewUplink(mqttClient mqtt.Client, deviceID string) types.MessageHandler {
	return &uplink{mqttClient, deviceID, make(chan types.Message, 10)}
}

func (u *uplink) Receive(message types.Message) {
	switch message.MessageType {
	case "pose":
		return
	}
	u.inbox <- message
}

func (u *uplink) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	wg.Add(1)
	defer wg.Done()

	topic := fmt.Sprintf("/devices/%s/events/guidance", u.deviceID)

	for {
		select {
		case <-ctx.Done():
			log.Println("Telemetry uplink shutting down")
			return
		case msg := <-u.inbox:
			u2 := uuid.New()
			b, err := json.Marshal(uplinkEvent{MessageID: u2.String(), Message: msg})
			if err != nil {
				log.Printf("UPLINK: could not marshal %s event: %v", msg.MessageType, err)
				continue
			}
			u.mqttClient.Publish(topic, qos, retain, string(b))
		}
	}
}
