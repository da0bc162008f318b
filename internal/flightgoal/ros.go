package flightgoal

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tiiuae/rclgo/pkg/ros2"
	std_msgs "github.com/tiiuae/rclgo/pkg/ros2/msgs/std_msgs/msg"
	std_srvs "github.com/tiiuae/rclgo/pkg/ros2/msgs/std_srvs/srv"
	"github.com/tiiuae/rclgo/pkg/ros2/ros2types"
)

const (
	goalTopic   = "flight_motion/goal"
	statusTopic = "flight_motion/status"
	cancelName  = "flight_motion/cancel"

	pollInterval = 100 * time.Millisecond
)

type goalRequest struct {
	Motion             string  `json:"motion"`
	Seq                int     `json:"seq"`
	X                  float64 `json:"x"`
	Y                  float64 `json:"y"`
	Z                  float64 `json:"z"`
	Yaw                float64 `json:"yaw"`
	LinearVelocity     float64 `json:"linear_velocity"`
	YawRate            float64 `json:"yaw_rate"`
	PositionTolerance  float64 `json:"position_tolerance"`
	YawTolerance       float64 `json:"yaw_tolerance"`
	WaitForConvergence bool    `json:"wait_for_convergence"`
}

type statusReport struct {
	Seq    int    `json:"seq"`
	Status string `json:"status"`
}

// RosClient talks to the flight-motion service over ROS: JSON goal
// requests on a topic, a Trigger service for cancellation and a status
// topic tagged with the goal sequence number so stale reports of
// superseded goals can be ignored.
type RosClient struct {
	ctx           context.Context
	node          *ros2.Node
	goalPub       *ros2.Publisher
	cancelService *ros2.Client

	mu     sync.Mutex
	seq    int
	active bool
	status Status
}

func NewRosClient(ctx context.Context, rclContext *ros2.Context, node *ros2.Node) *RosClient {
	pub, err := node.NewPublisher(goalTopic, &std_msgs.String{})
	if err != nil {
		log.Fatalf("Failed to create goal publisher: %v", err)
	}

	opt := &ros2.ClientOptions{Qos: ros2.NewRmwQosProfileServicesDefault()}
	cancelService, err := node.NewClient(cancelName, std_srvs.Trigger, opt)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ws, err := rclContext.NewWaitSet(200 * time.Millisecond)
	if err != nil {
		log.Fatalf("%v", err)
	}
	ws.AddClients(cancelService)
	ws.RunGoroutine(ctx)

	return &RosClient{
		ctx:           ctx,
		node:          node,
		goalPub:       pub,
		cancelService: cancelService,
		status:        StatusPending,
	}
}

// Run spins the status subscription until ctx is cancelled.
func (c *RosClient) Run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	sub, rclErr := c.node.NewSubscription(statusTopic, &std_msgs.String{}, func(s *ros2.Subscription) {
		var m std_msgs.String
		_, rlcErr := s.TakeMessage(&m)
		if rlcErr != nil {
			log.Print("TakeMessage failed: flight_motion status")
			return
		}

		str := fmt.Sprintf("%v", m.Data)
		var report statusReport
		if err := json.Unmarshal([]byte(str), &report); err != nil {
			log.Printf("GOAL: could not unmarshal status report: %v", err)
			return
		}
		status, err := ParseStatus(report.Status)
		if err != nil {
			log.Printf("GOAL: %v", err)
			return
		}

		c.mu.Lock()
		if report.Seq == c.seq {
			c.status = status
		}
		c.mu.Unlock()
	})
	if rclErr != nil {
		log.Fatalf("Unable to subscribe to topic '%s': %v", statusTopic, rclErr)
	}

	err := sub.Spin(ctx, 5*time.Second)
	if err != nil {
		log.Printf("Subscription failed: %v", err)
	}
}

// Submit publishes a GOTO request. The remote keeps at most one goal
// active, so this supersedes any in-flight goal.
func (c *RosClient) Submit(goal Goal) {
	c.mu.Lock()
	c.seq++
	c.active = true
	c.status = StatusPending
	req := goalRequest{
		Motion:             "GOTO",
		Seq:                c.seq,
		X:                  goal.Target.X,
		Y:                  goal.Target.Y,
		Z:                  goal.Target.Z,
		Yaw:                goal.Target.Yaw,
		LinearVelocity:     goal.LinearVelocity,
		YawRate:            goal.YawRate,
		PositionTolerance:  goal.PositionTolerance,
		YawTolerance:       goal.YawTolerance,
		WaitForConvergence: goal.WaitForConvergence,
	}
	c.mu.Unlock()

	b, err := json.Marshal(req)
	if err != nil {
		panic("Unable to marshal goal request")
	}
	c.goalPub.Publish(createString(string(b)))
	log.Printf("GOAL: submitted #%d -> (%v, %v, %v, %v)", req.Seq, req.X, req.Y, req.Z, req.Yaw)
}

// Cancel requests cancellation of the in-flight goal. No-op when none is
// active.
func (c *RosClient) Cancel() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	seq := c.seq
	c.mu.Unlock()

	req := std_srvs.NewTrigger_Request()
	res, _, err := c.cancelService.Send(c.ctx, req)
	if err != nil {
		log.Printf("GOAL: cancel of #%d failed: %v", seq, err)
		return
	}
	log.Printf("GOAL: cancelled #%d: %v", seq, res)
}

func (c *RosClient) Poll() Status {
	c.mu.Lock()
	status := c.status
	c.mu.Unlock()
	return status
}

// AwaitResult blocks until the current goal reaches a terminal status.
// No timeout beyond what the remote service provides; a hung remote hangs
// the caller, which is why only the diversion runner uses this.
func (c *RosClient) AwaitResult(ctx context.Context) Status {
	for {
		status := c.Poll()
		if status.Terminal() {
			return status
		}
		select {
		case <-ctx.Done():
			return c.Poll()
		case <-time.After(pollInterval):
		}
	}
}

// Close cancels any in-flight goal before releasing the publisher, so the
// vehicle is never left executing a goal issued by a dead controller.
func (c *RosClient) Close() {
	c.Cancel()
	c.goalPub.Close()
}

func createString(value string) ros2types.ROS2Msg {
	rosmsg := std_msgs.NewString()
	rosmsg.Data.SetDefaults(value)
	return rosmsg
}
