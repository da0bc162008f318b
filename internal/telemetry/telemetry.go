// Package telemetry feeds the vehicle pose stream onto the bus and
// mirrors mission events to the cloud over MQTT.
package telemetry

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tiiuae/rclgo/pkg/ros2"
	px4_msgs "github.com/tiiuae/rclgo/pkg/ros2/msgs/px4_msgs/msg"

	"github.com/aeroloop/guidanceengine/internal/types"
)

type telemetry struct {
	node     *ros2.Node
	deviceID string
}

func New(node *ros2.Node, deviceID string) types.MessageHandler {
	return &telemetry{node, deviceID}
}

func (t *telemetry) Receive(message types.Message) {
}

func (t *telemetry) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	go t.runPoseSubscriber(ctx, wg, post)
}

func (t *telemetry) runPoseSubscriber(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	wg.Add(1)
	defer wg.Done()

	sub, rclErr := t.node.NewSubscription("VehicleLocalPosition_PubSubTopic", &px4_msgs.VehicleLocalPosition{}, func(s *ros2.Subscription) {
		var m px4_msgs.VehicleLocalPosition
		_, rlcErr := s.TakeMessage(&m)
		if rlcErr != nil {
			log.Print("TakeMessage failed: runPoseSubscriber")
			return
		}

		if !m.XyValid || !m.ZValid {
			return
		}

		// PX4 local positions are NED; the plan frame is z up.
		out := types.Pose{
			X:   float64(m.X),
			Y:   float64(m.Y),
			Z:   float64(-m.Z),
			Yaw: float64(m.Heading),
		}
		post(types.CreateMessage("pose", t.deviceID, t.deviceID, out))
	})

	if rclErr != nil {
		log.Fatalf("Unable to subscribe to topic 'VehicleLocalPosition_PubSubTopic': %v", rclErr)
	}

	err := sub.Spin(ctx, 5*time.Second)
	if err != nil {
		log.Printf("Subscription failed: %v", err)
	}
}
