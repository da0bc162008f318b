// Package sequencer drives the mission: it advances through the waypoint
// plan on a fixed-rate poll of the flight-goal client, hands perception
// events off to the diversion runner and stages the landing once the plan
// is exhausted.
package sequencer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/aeroloop/guidanceengine/internal/flightgoal"
	"github.com/aeroloop/guidanceengine/internal/markers"
	"github.com/aeroloop/guidanceengine/internal/plan"
	"github.com/aeroloop/guidanceengine/internal/types"
)

type Config struct {
	Envelope          plan.SafeEnvelope
	LinearVelocity    float64
	YawRate           float64
	PositionTolerance float64
	YawTolerance      float64
	SurveyAltitude    float64
	LandingMarkerID   int
	LandingFallback   markers.Position
	TickInterval      time.Duration
}

type sequencer struct {
	cfg    Config
	client flightgoal.Client
	inbox  chan types.Message
	state  *state

	ticker *time.Ticker
	tickCh <-chan time.Time
}

func New(cfg Config, client flightgoal.Client, missionPlan *plan.MissionPlan, table *markers.Table) types.MessageHandler {
	return &sequencer{
		cfg:    cfg,
		client: client,
		inbox:  make(chan types.Message, 10),
		state:  newState(cfg, missionPlan, table),
	}
}

func (s *sequencer) Receive(message types.Message) {
	s.inbox <- message
}

func (s *sequencer) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	wg.Add(1)
	defer wg.Done()

	s.ticker = time.NewTicker(s.cfg.TickInterval)
	defer s.ticker.Stop()
	s.tickCh = s.ticker.C

	s.apply(s.state.start(), post)

	for {
		select {
		case <-ctx.Done():
			log.Println("Sequencer shutting down")
			return
		case <-s.tickCh:
			s.apply(s.state.tick(s.client.Poll()), post)
		case msg := <-s.inbox:
			s.apply(s.dispatch(msg), post)
		}
	}
}

func (s *sequencer) dispatch(msg types.Message) []effect {
	switch m := msg.Message.(type) {
	case types.MarkerObserved:
		return s.state.handleMarker(m)
	case types.RoiDetected:
		return s.state.handleRoi(m)
	case types.TargetClassified:
		return s.state.handleTarget(m)
	case types.DiversionCompleted:
		return s.state.handleDiversionCompleted()
	case types.DiversionFailed:
		return s.state.handleDiversionFailed(m)
	}
	return nil
}

func (s *sequencer) apply(effects []effect, post types.PostFn) {
	for _, e := range effects {
		switch ef := e.(type) {
		case submitGoal:
			s.client.Submit(flightgoal.Goal{
				Target:             ef.target,
				LinearVelocity:     s.cfg.LinearVelocity,
				YawRate:            s.cfg.YawRate,
				PositionTolerance:  s.cfg.PositionTolerance,
				YawTolerance:       s.cfg.YawTolerance,
				WaitForConvergence: true,
			})
		case cancelGoal:
			s.client.Cancel()
		case postMessage:
			post(ef.msg)
		case stopMission:
			s.ticker.Stop()
			s.tickCh = nil
		}
	}
}
