// Package pathviz publishes the mission plan, and any diversion sub-path,
// for operator display. Write-only; nothing reads it back.
package pathviz

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tiiuae/rclgo/pkg/ros2"
	builtin_interfaces "github.com/tiiuae/rclgo/pkg/ros2/msgs/builtin_interfaces/msg"
	geometry_msgs "github.com/tiiuae/rclgo/pkg/ros2/msgs/geometry_msgs/msg"
	nav_msgs "github.com/tiiuae/rclgo/pkg/ros2/msgs/nav_msgs/msg"
	std_msgs "github.com/tiiuae/rclgo/pkg/ros2/msgs/std_msgs/msg"

	"github.com/aeroloop/guidanceengine/internal/plan"
	"github.com/aeroloop/guidanceengine/internal/types"
)

type pathviz struct {
	node        *ros2.Node
	missionPlan *plan.MissionPlan
	inbox       chan types.Message

	lastPose types.Pose
}

func New(node *ros2.Node, missionPlan *plan.MissionPlan) types.MessageHandler {
	return &pathviz{node: node, missionPlan: missionPlan, inbox: make(chan types.Message, 10)}
}

func (p *pathviz) Receive(message types.Message) {
	p.inbox <- message
}

func (p *pathviz) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	wg.Add(1)
	defer wg.Done()

	pub, err := p.node.NewPublisher("path", &nav_msgs.Path{})
	if err != nil {
		log.Fatalf("Failed to create path publisher: %v", err)
	}
	defer pub.Close()

	pub.Publish(createPath(p.missionPlan.Waypoints()))

	for {
		select {
		case <-ctx.Done():
			log.Println("Pathviz shutting down")
			return
		case msg := <-p.inbox:
			switch m := msg.Message.(type) {
			case types.Pose:
				p.lastPose = m
			case types.DivertRequested:
				sub := []plan.Waypoint{
					{X: p.lastPose.X, Y: p.lastPose.Y, Z: p.lastPose.Z},
					{X: m.X, Y: m.Y, Z: p.lastPose.Z},
				}
				pub.Publish(createPath(sub))
			}
		}
	}
}

func createPath(points []plan.Waypoint) *nav_msgs.Path {
	now := time.Now()
	stamp := builtin_interfaces.NewTime()
	stamp.Sec = int32(now.Unix())
	stamp.Nanosec = uint32(now.Nanosecond())

	path := nav_msgs.NewPath()
	path.Header = *std_msgs.NewHeader()
	path.Header.Stamp = *stamp
	path.Header.FrameId = "map"
	path.Poses = make([]geometry_msgs.PoseStamped, len(points))
	for i, p := range points {
		point := geometry_msgs.NewPoint()
		point.X = p.X
		point.Y = p.Y
		point.Z = p.Z
		pose := geometry_msgs.NewPoseStamped()
		pose.Header = *std_msgs.NewHeader()
		pose.Header.Stamp = *stamp
		pose.Header.FrameId = "map"
		pose.Pose.Position = *point
		path.Poses[i] = *pose
	}

	return path
}
