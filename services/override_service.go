// services/override_service.go
package services

import (
	"log"
	"time"

	"github.com/tapline/barmatrix/config"
	"github.com/tapline/barmatrix/models"
	"github.com/tapline/barmatrix/utils"
)

// ScheduleStore is the slice of the schedule table the override
// calculator needs. database.ScheduleStore satisfies it; tests inject
// fakes so the decision table can be exercised deterministically.
type ScheduleStore interface {
	FindLiveEvent(channelNumber string, at time.Time) (*models.ScheduleEntry, error)
}

// OverrideService decides how long a manual route change should hold off
// automated routing. Struct with injected store rather than package
// functions so the channel lookup is deterministic under test.
type OverrideService struct {
	Schedule ScheduleStore
	Cfg      config.OverridesConfig

	// Now is the clock; nil means time.Now. Tests pin it.
	Now func() time.Time
}

func (s *OverrideService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// LookupChannelMetadata checks the sports schedule for a live event on the
// given channel. It never fails: an unknown channel, an empty guide or a
// store error all come back as "not a live event" so the calculator can
// fall through to its default.
func (s *OverrideService) LookupChannelMetadata(channelNumber string) *models.ChannelMetadata {
	normalized := utils.NormalizeChannelNumber(channelNumber)
	meta := &models.ChannelMetadata{ChannelNumber: normalized}

	if s.Schedule == nil || normalized == "" {
		return meta
	}

	nowTime := s.now()
	event, err := s.Schedule.FindLiveEvent(normalized, nowTime)
	if err != nil {
		log.Printf("WARN OverrideService: Schedule lookup failed for channel %s: %v. Treating as no event.", normalized, err)
		return meta
	}
	if event == nil {
		return meta
	}

	meta.IsLiveSportingEvent = true
	meta.EventDescription = event.Description()
	// The schedule row gives us a computable remaining time, so this is
	// always the "known remaining" case, even in the final minute of a
	// game where whole minutes truncate to zero.
	remaining := event.RemainingMinutes(nowTime)
	if remaining < 0 {
		remaining = 0
	}
	meta.EstimatedRemainingMinutes = &remaining
	return meta
}

// ComputeOverride applies the override duration decision table. Pure
// function of its input; always returns a concrete positive duration.
//
// First match wins:
//  1. live event, known remaining time -> remaining + buffer, capped
//     (the cap eats into the buffer, never into the remaining time)
//  2. live event, unknown remaining time -> long default
//  3. everything else -> the no-event fallback
func (s *OverrideService) ComputeOverride(meta *models.ChannelMetadata) models.OverrideDecision {
	if meta != nil && meta.IsLiveSportingEvent {
		if meta.EstimatedRemainingMinutes != nil {
			remaining := time.Duration(*meta.EstimatedRemainingMinutes) * time.Minute
			duration := remaining + s.Cfg.LiveEventBuffer
			if duration > s.Cfg.MaxOverride {
				duration = s.Cfg.MaxOverride
			}
			if duration < remaining {
				duration = remaining
			}
			return decisionFor(duration, models.ReasonLiveEventKnownRemaining)
		}
		return decisionFor(s.Cfg.LiveEventDefault, models.ReasonLiveEventUnknownRemaining)
	}
	return decisionFor(s.Cfg.NoEventFallback, models.ReasonNoEventData)
}

// ComputeOverrideForChannel is the lookup and the decision table in one
// call; this is the surface the preview endpoint uses.
func (s *OverrideService) ComputeOverrideForChannel(channelNumber string) models.OverrideDecision {
	return s.ComputeOverride(s.LookupChannelMetadata(channelNumber))
}

func decisionFor(duration time.Duration, reason string) models.OverrideDecision {
	return models.OverrideDecision{
		DurationMs:      duration.Milliseconds(),
		DurationMinutes: int(duration.Minutes()),
		Reason:          reason,
	}
}
