// services/override_service_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapline/barmatrix/config"
	"github.com/tapline/barmatrix/models"
)

var testOverridesCfg = config.OverridesConfig{
	LiveEventBuffer:  15 * time.Minute,
	MaxOverride:      6 * time.Hour,
	LiveEventDefault: 3 * time.Hour,
	NoEventFallback:  4 * time.Hour,
}

// fakeScheduleStore serves canned schedule entries keyed by channel number.
type fakeScheduleStore struct {
	events    map[string]models.ScheduleEntry
	lookupErr error
}

func (f *fakeScheduleStore) FindLiveEvent(channelNumber string, at time.Time) (*models.ScheduleEntry, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	e, ok := f.events[channelNumber]
	if !ok || !e.LiveAt(at) {
		return nil, nil
	}
	return &e, nil
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
}

func intPtr(n int) *int { return &n }

func TestComputeOverride_DecisionTable(t *testing.T) {
	svc := &OverrideService{Cfg: testOverridesCfg}

	t.Run("live event with known remaining time gets remaining plus buffer", func(t *testing.T) {
		d := svc.ComputeOverride(&models.ChannelMetadata{
			IsLiveSportingEvent:       true,
			EstimatedRemainingMinutes: intPtr(40),
		})
		assert.Equal(t, 55, d.DurationMinutes)
		assert.Equal(t, (55 * time.Minute).Milliseconds(), d.DurationMs)
		assert.Equal(t, models.ReasonLiveEventKnownRemaining, d.Reason)
	})

	t.Run("remaining plus buffer is capped", func(t *testing.T) {
		d := svc.ComputeOverride(&models.ChannelMetadata{
			IsLiveSportingEvent:       true,
			EstimatedRemainingMinutes: intPtr(355), // 355 + 15 > 360
		})
		assert.Equal(t, 360, d.DurationMinutes)
		assert.Equal(t, models.ReasonLiveEventKnownRemaining, d.Reason)
	})

	t.Run("cap never cuts into the remaining broadcast time itself", func(t *testing.T) {
		d := svc.ComputeOverride(&models.ChannelMetadata{
			IsLiveSportingEvent:       true,
			EstimatedRemainingMinutes: intPtr(400), // beyond the cap on its own
		})
		assert.Equal(t, 400, d.DurationMinutes)
	})

	t.Run("live event with unknown remaining time gets the long default", func(t *testing.T) {
		for _, channel := range []string{"702", "9", "1500-2"} {
			d := svc.ComputeOverride(&models.ChannelMetadata{
				ChannelNumber:       channel,
				IsLiveSportingEvent: true,
			})
			assert.Equal(t, 180, d.DurationMinutes, "channel %s", channel)
			assert.Equal(t, models.ReasonLiveEventUnknownRemaining, d.Reason)
		}
	})

	t.Run("non-event gets the fallback", func(t *testing.T) {
		d := svc.ComputeOverride(&models.ChannelMetadata{ChannelNumber: "44"})
		assert.Equal(t, 240, d.DurationMinutes)
		assert.Equal(t, models.ReasonNoEventData, d.Reason)
	})

	t.Run("nil metadata gets the fallback", func(t *testing.T) {
		d := svc.ComputeOverride(nil)
		assert.Equal(t, 240, d.DurationMinutes)
		assert.Equal(t, models.ReasonNoEventData, d.Reason)
	})

	t.Run("fallback and live default stay independent", func(t *testing.T) {
		// The two defaults are deliberately separate config knobs.
		cfg := testOverridesCfg
		cfg.NoEventFallback = 90 * time.Minute
		indep := &OverrideService{Cfg: cfg}

		noEvent := indep.ComputeOverride(nil)
		liveUnknown := indep.ComputeOverride(&models.ChannelMetadata{IsLiveSportingEvent: true})
		assert.Equal(t, 90, noEvent.DurationMinutes)
		assert.Equal(t, 180, liveUnknown.DurationMinutes)
	})

	t.Run("always returns a concrete positive duration", func(t *testing.T) {
		inputs := []*models.ChannelMetadata{
			nil,
			{},
			{IsLiveSportingEvent: true},
			{IsLiveSportingEvent: true, EstimatedRemainingMinutes: intPtr(1)},
			{IsLiveSportingEvent: true, EstimatedRemainingMinutes: intPtr(600)},
		}
		for i, meta := range inputs {
			d := svc.ComputeOverride(meta)
			assert.Greater(t, d.DurationMs, int64(0), "input %d", i)
			assert.Greater(t, d.DurationMinutes, 0, "input %d", i)
			assert.NotEmpty(t, d.Reason, "input %d", i)
		}
	})
}

func TestLookupChannelMetadata(t *testing.T) {
	now := fixedClock()
	store := &fakeScheduleStore{events: map[string]models.ScheduleEntry{
		"702": {
			ChannelNumber: "702",
			League:        "NFL",
			HomeTeam:      "Chiefs",
			AwayTeam:      "Bills",
			StartTime:     now.Add(-2 * time.Hour),
			EndTime:       now.Add(40 * time.Minute),
		},
	}}
	svc := &OverrideService{Schedule: store, Cfg: testOverridesCfg, Now: fixedClock}

	t.Run("live event reports remaining minutes", func(t *testing.T) {
		meta := svc.LookupChannelMetadata("702")
		require.NotNil(t, meta)
		assert.True(t, meta.IsLiveSportingEvent)
		require.NotNil(t, meta.EstimatedRemainingMinutes)
		assert.Equal(t, 40, *meta.EstimatedRemainingMinutes)
		assert.Equal(t, "NFL: Bills @ Chiefs", meta.EventDescription)
	})

	t.Run("final minute of a game still counts as known remaining", func(t *testing.T) {
		closing := &OverrideService{
			Schedule: &fakeScheduleStore{events: map[string]models.ScheduleEntry{
				"206": {
					ChannelNumber: "206",
					League:        "NBA",
					StartTime:     now.Add(-3 * time.Hour),
					EndTime:       now.Add(30 * time.Second),
				},
			}},
			Cfg: testOverridesCfg,
			Now: fixedClock,
		}
		meta := closing.LookupChannelMetadata("206")
		require.NotNil(t, meta)
		assert.True(t, meta.IsLiveSportingEvent)
		require.NotNil(t, meta.EstimatedRemainingMinutes)
		assert.Equal(t, 0, *meta.EstimatedRemainingMinutes)

		// Whole-minute truncation must not demote the event to the
		// three-hour unknown-remaining default; the bartender gets the
		// buffer, not the long hold.
		d := closing.ComputeOverrideForChannel("206")
		assert.Equal(t, 15, d.DurationMinutes)
		assert.Equal(t, models.ReasonLiveEventKnownRemaining, d.Reason)
	})

	t.Run("channel number is normalized before lookup", func(t *testing.T) {
		meta := svc.LookupChannelMetadata(" 0702 ")
		require.NotNil(t, meta)
		assert.True(t, meta.IsLiveSportingEvent)
	})

	t.Run("unknown channel is not an event and never an error", func(t *testing.T) {
		meta := svc.LookupChannelMetadata("999")
		require.NotNil(t, meta)
		assert.False(t, meta.IsLiveSportingEvent)
		assert.Nil(t, meta.EstimatedRemainingMinutes)
	})

	t.Run("store failure degrades to no event", func(t *testing.T) {
		failing := &OverrideService{
			Schedule: &fakeScheduleStore{lookupErr: fmt.Errorf("connection refused")},
			Cfg:      testOverridesCfg,
			Now:      fixedClock,
		}
		meta := failing.LookupChannelMetadata("702")
		require.NotNil(t, meta)
		assert.False(t, meta.IsLiveSportingEvent)
	})

	t.Run("nil schedule store degrades to no event", func(t *testing.T) {
		bare := &OverrideService{Cfg: testOverridesCfg, Now: fixedClock}
		meta := bare.LookupChannelMetadata("702")
		require.NotNil(t, meta)
		assert.False(t, meta.IsLiveSportingEvent)
	})
}

func TestComputeOverrideForChannel(t *testing.T) {
	now := fixedClock()
	store := &fakeScheduleStore{events: map[string]models.ScheduleEntry{
		"702": {
			ChannelNumber: "702",
			League:        "NBA",
			StartTime:     now.Add(-30 * time.Minute),
			EndTime:       now.Add(40 * time.Minute),
		},
	}}
	svc := &OverrideService{Schedule: store, Cfg: testOverridesCfg, Now: fixedClock}

	t.Run("known live event: remaining 40 plus buffer 15", func(t *testing.T) {
		d := svc.ComputeOverrideForChannel("702")
		assert.Equal(t, 55, d.DurationMinutes)
		assert.Equal(t, models.ReasonLiveEventKnownRemaining, d.Reason)
	})

	t.Run("channels missing from every schedule get the fallback", func(t *testing.T) {
		for _, channel := range []string{"5", "1200", "abc", ""} {
			d := svc.ComputeOverrideForChannel(channel)
			assert.Equal(t, 240, d.DurationMinutes, "channel %q", channel)
			assert.Equal(t, models.ReasonNoEventData, d.Reason, "channel %q", channel)
		}
	})
}
