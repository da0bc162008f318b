// Package diversion runs the scripted point-of-interest maneuver: fly to
// the detection, dwell, optionally release a payload, fly back, resume.
//
// The script blocks on the flight-motion service between legs, so it runs
// on its own goroutine. The handler loop keeps draining pose updates the
// whole time; only the bus-level completion message re-enables the
// sequencer.
package diversion

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/aeroloop/guidanceengine/internal/flightgoal"
	"github.com/aeroloop/guidanceengine/internal/plan"
	"github.com/aeroloop/guidanceengine/internal/types"
)

type Config struct {
	Envelope          plan.SafeEnvelope
	LinearVelocity    float64
	YawRate           float64
	PositionTolerance float64
	YawTolerance      float64
	// Dwell is the hover time over the detection point.
	Dwell time.Duration
	// Confirm is the post-release hold. Placeholder for a future
	// deployment-confirmation message from the payload controller.
	Confirm time.Duration
}

type handler struct {
	cfg    Config
	client flightgoal.Client
	inbox  chan types.Message
	done   chan struct{}

	lastPose types.Pose
	running  bool
}

func New(cfg Config, client flightgoal.Client) types.MessageHandler {
	return &handler{
		cfg:    cfg,
		client: client,
		inbox:  make(chan types.Message, 10),
		done:   make(chan struct{}, 1),
	}
}

func (h *handler) Receive(message types.Message) {
	h.inbox <- message
}

func (h *handler) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			log.Println("Diversion runner shutting down")
			return
		case <-h.done:
			h.running = false
		case msg := <-h.inbox:
			switch m := msg.Message.(type) {
			case types.Pose:
				h.lastPose = m
			case types.DivertRequested:
				if h.running {
					log.Printf("DIVERT: request ignored, maneuver in progress")
					continue
				}
				h.running = true
				// Return point: where the vehicle is right now, at its
				// current altitude, yaw zeroed.
				ret := plan.Waypoint{X: h.lastPose.X, Y: h.lastPose.Y, Z: h.lastPose.Z}
				go h.runScript(ctx, m, ret, post)
			}
		}
	}
}

func (h *handler) runScript(ctx context.Context, req types.DivertRequested, ret plan.Waypoint, post types.PostFn) {
	defer func() {
		h.done <- struct{}{}
	}()

	target := plan.Waypoint{X: req.X, Y: req.Y, Z: ret.Z}
	if !plan.Validate(target, h.cfg.Envelope) {
		log.Printf("DIVERT: detection point out of envelope, maneuver skipped")
		post(types.CreateLocalMessage("diversion-completed", types.DiversionCompleted{}))
		return
	}

	h.client.Cancel()

	log.Printf("DIVERT: flying to detection point (%v, %v, %v)", target.X, target.Y, target.Z)
	if status := h.flyTo(ctx, target); status != flightgoal.StatusSucceeded {
		post(types.CreateLocalMessage("diversion-failed", types.DiversionFailed{
			Reason: "detection leg ended with " + status.String(),
		}))
		return
	}

	log.Printf("DIVERT: holding for %v", h.cfg.Dwell)
	if !sleep(ctx, h.cfg.Dwell) {
		return
	}

	if req.HasPayload {
		log.Printf("DIVERT: releasing payload %d", req.PayloadID)
		post(types.CreateLocalMessage("release-payload", types.ReleasePayload{PayloadID: req.PayloadID}))
		if !sleep(ctx, h.cfg.Confirm) {
			return
		}
	}

	log.Printf("DIVERT: returning to (%v, %v, %v)", ret.X, ret.Y, ret.Z)
	if status := h.flyTo(ctx, ret); status != flightgoal.StatusSucceeded {
		post(types.CreateLocalMessage("diversion-failed", types.DiversionFailed{
			Reason: "return leg ended with " + status.String(),
		}))
		return
	}

	// Put the superseded sequencing goal back so the mission picks up
	// exactly where it left off.
	h.submit(req.Resume)
	post(types.CreateLocalMessage("diversion-completed", types.DiversionCompleted{}))
}

func (h *handler) flyTo(ctx context.Context, wp plan.Waypoint) flightgoal.Status {
	h.submit(wp)
	return h.client.AwaitResult(ctx)
}

func (h *handler) submit(wp plan.Waypoint) {
	h.client.Submit(flightgoal.Goal{
		Target:             wp,
		LinearVelocity:     h.cfg.LinearVelocity,
		YawRate:            h.cfg.YawRate,
		PositionTolerance:  h.cfg.PositionTolerance,
		YawTolerance:       h.cfg.YawTolerance,
		WaitForConvergence: true,
	})
}

// sleep waits for d unless the process is shutting down.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
