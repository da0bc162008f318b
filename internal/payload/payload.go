// Package payload forwards release commands to the payload controller.
// There is no acknowledgement contract on the channel yet.
package payload

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/tiiuae/rclgo/pkg/ros2"
	std_msgs "github.com/tiiuae/rclgo/pkg/ros2/msgs/std_msgs/msg"
	"github.com/tiiuae/rclgo/pkg/ros2/ros2types"

	"github.com/aeroloop/guidanceengine/internal/types"
)

const topicRelease = "payload_release"

type payload struct {
	node  *ros2.Node
	inbox chan types.Message
}

func New(node *ros2.Node) types.MessageHandler {
	return &payload{node, make(chan types.Message, 10)}
}

func (p *payload) Receive(message types.Message) {
	if _, ok := message.Message.(types.ReleasePayload); !ok {
		return
	}
	p.inbox <- message
}

func (p *payload) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	wg.Add(1)
	defer wg.Done()

	pub, err := p.node.NewPublisher(topicRelease, &std_msgs.String{})
	if err != nil {
		log.Fatalf("Failed to create payload publisher: %v", err)
	}
	defer pub.Close()

	for {
		select {
		case <-ctx.Done():
			log.Println("Payload handler shutting down")
			return
		case msg := <-p.inbox:
			m := msg.Message.(types.ReleasePayload)
			b, err := json.Marshal(m)
			if err != nil {
				panic("Unable to marshal payload command")
			}
			log.Printf("PAYLOAD: releasing %d", m.PayloadID)
			pub.Publish(createString(string(b)))
		}
	}
}

func createString(value string) ros2types.ROS2Msg {
	rosmsg := std_msgs.NewString()
	rosmsg.Data.SetDefaults(value)
	return rosmsg
}
