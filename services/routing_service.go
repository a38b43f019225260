// services/routing_service.go
package services

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/tapline/barmatrix/models"
	"github.com/tapline/barmatrix/utils"
)

// RouteStore is the persistence surface the routing service writes to.
// database.RouteStore satisfies it.
type RouteStore interface {
	SaveManualRoute(outputNumber, inputNumber int, overrideUntil time.Time, changedBy string, changedAt time.Time) error
	SaveAutomatedRoute(outputNumber, inputNumber int) error
	GetRoute(outputNumber int) (*models.MatrixRoute, error)
	ListRoutes() ([]models.MatrixRoute, error)
	ClearExpiredOverrides(now time.Time) (int64, error)
	AppendChangeLog(entry models.RouteChangeLogEntry) error
}

// ChannelStore is the current-channel snapshot surface.
// database.ChannelStore satisfies it.
type ChannelStore interface {
	GetCurrentChannel(inputNumber int) (*models.CurrentChannel, error)
	SaveCurrentChannel(ch models.CurrentChannel) error
}

// MatrixCommander physically switches the matrix. matrix.Client satisfies
// it; tests inject a fake.
type MatrixCommander interface {
	SwitchInput(inputNumber, outputNumber int) error
}

// RoutingService orchestrates a route change: hardware first, tracking
// second. Tracking failures are logged and swallowed since the switch has
// already been commanded.
type RoutingService struct {
	Matrix    MatrixCommander
	Routes    RouteStore
	Channels  ChannelStore
	Overrides *OverrideService

	// Now is the clock; nil means time.Now. Tests pin it.
	Now func() time.Time
}

func (s *RoutingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ApplyRoute commands the matrix to route inputNumber to outputNumber and
// records the result. Manual sources (bartender, manual) get a freshly
// computed manual override window; automated sources (ai_scheduler,
// system) leave any existing override untouched.
//
// Only a hardware failure makes this unsuccessful. Every persistence
// problem after the switch degrades to a logged warning.
func (s *RoutingService) ApplyRoute(outputNumber, inputNumber int, source models.RouteSource, changedBy string) models.SwitchRouteResponse {
	if !source.Valid() {
		return models.SwitchRouteResponse{
			Success: false,
			Error:   fmt.Sprintf("unknown route source %q", source),
		}
	}

	if err := s.Matrix.SwitchInput(inputNumber, outputNumber); err != nil {
		log.Printf("ERROR RoutingService: Matrix switch input %d -> output %d failed: %v", inputNumber, outputNumber, err)
		return models.SwitchRouteResponse{
			Success: false,
			Error:   fmt.Sprintf("matrix switch failed: %v", err),
		}
	}

	changedAt := s.now()
	var decision *models.OverrideDecision
	var overrideUntil *time.Time

	if source.IsManual() {
		d := s.Overrides.ComputeOverride(s.lookupInputChannel(inputNumber))
		until := changedAt.Add(d.Duration())
		decision = &d
		overrideUntil = &until

		if err := s.Routes.SaveManualRoute(outputNumber, inputNumber, until, changedBy, changedAt); err != nil {
			log.Printf("WARN RoutingService: Failed to record manual route output %d (switch already done): %v", outputNumber, err)
		} else {
			log.Printf("Service: Output %d -> input %d by %s (%s); manual override until %s (%s)\n",
				outputNumber, inputNumber, changedBy, source, until.Format(time.RFC3339), d.Reason)
		}
	} else {
		if err := s.Routes.SaveAutomatedRoute(outputNumber, inputNumber); err != nil {
			log.Printf("WARN RoutingService: Failed to record automated route output %d (switch already done): %v", outputNumber, err)
		} else {
			log.Printf("Service: Output %d -> input %d by %s; override fields untouched\n", outputNumber, inputNumber, source)
		}
	}

	s.appendChangeLog(models.RouteChangeLogEntry{
		ID:            uuid.NewString(),
		OutputNumber:  outputNumber,
		InputNumber:   inputNumber,
		Source:        source,
		ChangedBy:     changedBy,
		OverrideUntil: overrideUntil,
		ChangedAt:     changedAt,
	})

	return models.SwitchRouteResponse{Success: true, Override: decision}
}

// lookupInputChannel resolves what channel the input is tuned to and runs
// the schedule lookup on it. Missing snapshot rows degrade to "no event
// data", same as an unknown channel.
func (s *RoutingService) lookupInputChannel(inputNumber int) *models.ChannelMetadata {
	if s.Channels == nil {
		return nil
	}
	ch, err := s.Channels.GetCurrentChannel(inputNumber)
	if err != nil {
		log.Printf("WARN RoutingService: Failed to look up current channel for input %d: %v. Using fallback duration.", inputNumber, err)
		return nil
	}
	if ch == nil {
		log.Printf("Service: No current channel snapshot for input %d; using fallback duration.\n", inputNumber)
		return nil
	}
	return s.Overrides.LookupChannelMetadata(ch.ChannelNumber)
}

func (s *RoutingService) appendChangeLog(entry models.RouteChangeLogEntry) {
	if err := s.Routes.AppendChangeLog(entry); err != nil {
		log.Printf("WARN RoutingService: Failed to append route change log entry %s: %v", entry.ID, err)
	}
}

// RecordTune upserts the current-channel snapshot for an input. This is
// the write surface of the tuning subsystem.
func (s *RoutingService) RecordTune(n models.TuneNotification) error {
	if n.ChannelNumber == "" {
		return fmt.Errorf("channel_number is required")
	}
	ch := models.CurrentChannel{
		InputNumber:   n.InputNumber,
		ChannelNumber: utils.NormalizeChannelNumber(n.ChannelNumber),
		ChannelName:   n.ChannelName,
		DeviceType:    n.DeviceType,
		LastTuned:     s.now(),
	}
	if err := s.Channels.SaveCurrentChannel(ch); err != nil {
		return fmt.Errorf("failed to save current channel for input %d: %w", n.InputNumber, err)
	}
	log.Printf("Service: Input %d tuned to channel %s (%s)\n", n.InputNumber, ch.ChannelNumber, ch.DeviceType)
	return nil
}

// CurrentRoutes returns the live route table.
func (s *RoutingService) CurrentRoutes() ([]models.MatrixRoute, error) {
	return s.Routes.ListRoutes()
}

// RevertExpiredOverrides clears every manual override whose window has
// passed, completing the ManualOverride -> Automated transition. Called
// from the sweep ticker; failures are logged and retried next tick.
func (s *RoutingService) RevertExpiredOverrides() {
	n, err := s.Routes.ClearExpiredOverrides(s.now())
	if err != nil {
		log.Printf("ERROR RoutingService: Override sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Service: Override sweep returned %d output(s) to automated control.\n", n)
	}
}
