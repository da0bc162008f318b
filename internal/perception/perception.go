// Package perception bridges the upstream detector topics onto the bus.
package perception

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tiiuae/rclgo/pkg/ros2"
	std_msgs "github.com/tiiuae/rclgo/pkg/ros2/msgs/std_msgs/msg"

	"github.com/aeroloop/guidanceengine/internal/types"
)

const (
	topicRoi     = "perception/roi"
	topicMarkers = "perception/markers"
	topicTargets = "perception/targets"
)

type perception struct {
	node     *ros2.Node
	deviceID string
}

func New(node *ros2.Node, deviceID string) types.MessageHandler {
	return &perception{node, deviceID}
}

func (p *perception) Receive(message types.Message) {
}

func (p *perception) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	go p.runRoiSubscriber(ctx, wg, post)
	go p.runMarkerSubscriber(ctx, wg, post)
	go p.runTargetSubscriber(ctx, wg, post)
}

func (p *perception) runRoiSubscriber(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	wg.Add(1)
	defer wg.Done()

	sub, rclErr := p.node.NewSubscription(topicRoi, &std_msgs.String{}, func(s *ros2.Subscription) {
		var m types.RoiDetected
		if !takeJSON(s, topicRoi, &m) {
			return
		}
		post(types.CreateMessage("roi-detected", p.deviceID, p.deviceID, m))
	})
	if rclErr != nil {
		log.Fatalf("Unable to subscribe to topic '%s': %v", topicRoi, rclErr)
	}

	err := sub.Spin(ctx, 5*time.Second)
	if err != nil {
		log.Printf("Subscription failed: %v", err)
	}
}

func (p *perception) runMarkerSubscriber(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	wg.Add(1)
	defer wg.Done()

	sub, rclErr := p.node.NewSubscription(topicMarkers, &std_msgs.String{}, func(s *ros2.Subscription) {
		var m types.MarkerObserved
		if !takeJSON(s, topicMarkers, &m) {
			return
		}
		post(types.CreateMessage("marker-observed", p.deviceID, p.deviceID, m))
	})
	if rclErr != nil {
		log.Fatalf("Unable to subscribe to topic '%s': %v", topicMarkers, rclErr)
	}

	err := sub.Spin(ctx, 5*time.Second)
	if err != nil {
		log.Printf("Subscription failed: %v", err)
	}
}

func (p *perception) runTargetSubscriber(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	wg.Add(1)
	defer wg.Done()

	sub, rclErr := p.node.NewSubscription(topicTargets, &std_msgs.String{}, func(s *ros2.Subscription) {
		var m types.TargetClassified
		if !takeJSON(s, topicTargets, &m) {
			return
		}
		post(types.CreateMessage("target-classified", p.deviceID, p.deviceID, m))
	})
	if rclErr != nil {
		log.Fatalf("Unable to subscribe to topic '%s': %v", topicTargets, rclErr)
	}

	err := sub.Spin(ctx, 5*time.Second)
	if err != nil {
		log.Printf("Subscription failed: %v", err)
	}
}

func takeJSON(s *ros2.Subscription, topic string, v interface{}) bool {
	var m std_msgs.String
	_, rlcErr := s.TakeMessage(&m)
	if rlcErr != nil {
		log.Printf("TakeMessage failed: %s", topic)
		return false
	}

	str := fmt.Sprintf("%v", m.Data)
	if err := json.Unmarshal([]byte(str), v); err != nil {
		log.Printf("Could not unmarshal %s payload: %v", topic, err)
		return false
	}
	return true
}
