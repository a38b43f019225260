// services/routing_service_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapline/barmatrix/models"
)

type fakeMatrix struct {
	err   error
	calls [][2]int // input, output pairs
}

func (m *fakeMatrix) SwitchInput(inputNumber, outputNumber int) error {
	m.calls = append(m.calls, [2]int{inputNumber, outputNumber})
	return m.err
}

type manualSave struct {
	outputNumber  int
	inputNumber   int
	overrideUntil time.Time
	changedBy     string
	changedAt     time.Time
}

type fakeRouteStore struct {
	routes map[int]models.MatrixRoute

	manualSaves []manualSave
	autoSaves   [][2]int // output, input pairs
	logEntries  []models.RouteChangeLogEntry
	sweeps      []time.Time

	saveErr  error
	logErr   error
	sweepN   int64
	sweepErr error
}

func (f *fakeRouteStore) SaveManualRoute(outputNumber, inputNumber int, overrideUntil time.Time, changedBy string, changedAt time.Time) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.manualSaves = append(f.manualSaves, manualSave{outputNumber, inputNumber, overrideUntil, changedBy, changedAt})
	if f.routes == nil {
		f.routes = make(map[int]models.MatrixRoute)
	}
	f.routes[outputNumber] = models.MatrixRoute{
		OutputNumber:        outputNumber,
		InputNumber:         inputNumber,
		ManualOverrideUntil: &overrideUntil,
		LastManualChangeBy:  changedBy,
		LastManualChangeAt:  &changedAt,
	}
	return nil
}

func (f *fakeRouteStore) SaveAutomatedRoute(outputNumber, inputNumber int) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.autoSaves = append(f.autoSaves, [2]int{outputNumber, inputNumber})
	if f.routes == nil {
		f.routes = make(map[int]models.MatrixRoute)
	}
	prev := f.routes[outputNumber]
	prev.OutputNumber = outputNumber
	prev.InputNumber = inputNumber
	f.routes[outputNumber] = prev
	return nil
}

func (f *fakeRouteStore) GetRoute(outputNumber int) (*models.MatrixRoute, error) {
	r, ok := f.routes[outputNumber]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeRouteStore) ListRoutes() ([]models.MatrixRoute, error) {
	var out []models.MatrixRoute
	for _, r := range f.routes {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRouteStore) ClearExpiredOverrides(now time.Time) (int64, error) {
	f.sweeps = append(f.sweeps, now)
	return f.sweepN, f.sweepErr
}

func (f *fakeRouteStore) AppendChangeLog(entry models.RouteChangeLogEntry) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.logEntries = append(f.logEntries, entry)
	return nil
}

type fakeChannelStore struct {
	channels map[int]models.CurrentChannel
	saved    []models.CurrentChannel

	getErr  error
	saveErr error
}

func (f *fakeChannelStore) GetCurrentChannel(inputNumber int) (*models.CurrentChannel, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	ch, ok := f.channels[inputNumber]
	if !ok {
		return nil, nil
	}
	return &ch, nil
}

func (f *fakeChannelStore) SaveCurrentChannel(ch models.CurrentChannel) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, ch)
	return nil
}

// newRoutingFixture wires a routing service against fakes: input 5 is
// tuned to channel 702, which carries a live game with 40 minutes left.
func newRoutingFixture() (*RoutingService, *fakeMatrix, *fakeRouteStore, *fakeChannelStore) {
	now := fixedClock()
	mtx := &fakeMatrix{}
	routeStore := &fakeRouteStore{}
	channelStore := &fakeChannelStore{channels: map[int]models.CurrentChannel{
		5: {InputNumber: 5, ChannelNumber: "702", DeviceType: "directv", LastTuned: now.Add(-time.Hour)},
	}}
	scheduleStore := &fakeScheduleStore{events: map[string]models.ScheduleEntry{
		"702": {
			ChannelNumber: "702",
			League:        "NFL",
			HomeTeam:      "Chiefs",
			AwayTeam:      "Bills",
			StartTime:     now.Add(-2 * time.Hour),
			EndTime:       now.Add(40 * time.Minute),
		},
	}}

	svc := &RoutingService{
		Matrix:   mtx,
		Routes:   routeStore,
		Channels: channelStore,
		Overrides: &OverrideService{
			Schedule: scheduleStore,
			Cfg:      testOverridesCfg,
			Now:      fixedClock,
		},
		Now: fixedClock,
	}
	return svc, mtx, routeStore, channelStore
}

func TestApplyRoute_BartenderSetsOverride(t *testing.T) {
	svc, mtx, routeStore, _ := newRoutingFixture()
	now := fixedClock()

	resp := svc.ApplyRoute(2, 5, models.SourceBartender, "dana")

	require.True(t, resp.Success)
	require.NotNil(t, resp.Override)
	// 40 minutes left plus the 15 minute buffer.
	assert.Equal(t, 55, resp.Override.DurationMinutes)
	assert.Equal(t, models.ReasonLiveEventKnownRemaining, resp.Override.Reason)

	require.Len(t, mtx.calls, 1)
	assert.Equal(t, [2]int{5, 2}, mtx.calls[0])

	require.Len(t, routeStore.manualSaves, 1)
	save := routeStore.manualSaves[0]
	assert.Equal(t, 2, save.outputNumber)
	assert.Equal(t, 5, save.inputNumber)
	assert.Equal(t, "dana", save.changedBy)
	assert.Equal(t, now.Add(55*time.Minute), save.overrideUntil)
	assert.True(t, save.overrideUntil.After(now), "override must end strictly after now")
	assert.Empty(t, routeStore.autoSaves)

	require.Len(t, routeStore.logEntries, 1)
	entry := routeStore.logEntries[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, models.SourceBartender, entry.Source)
	require.NotNil(t, entry.OverrideUntil)
	assert.Equal(t, save.overrideUntil, *entry.OverrideUntil)
}

func TestApplyRoute_ManualAlwaysEndsAfterNow(t *testing.T) {
	// Even with no channel snapshot and no schedule data the fallback
	// duration keeps the window strictly in the future.
	svc, _, routeStore, channelStore := newRoutingFixture()
	channelStore.channels = nil

	resp := svc.ApplyRoute(7, 9, models.SourceManual, "sam")

	require.True(t, resp.Success)
	require.NotNil(t, resp.Override)
	assert.Equal(t, 240, resp.Override.DurationMinutes)
	assert.Equal(t, models.ReasonNoEventData, resp.Override.Reason)

	require.Len(t, routeStore.manualSaves, 1)
	assert.True(t, routeStore.manualSaves[0].overrideUntil.After(fixedClock()))
}

func TestApplyRoute_SystemNeverTouchesOverride(t *testing.T) {
	svc, _, routeStore, _ := newRoutingFixture()
	now := fixedClock()

	// Bartender locks output 2 first.
	resp := svc.ApplyRoute(2, 5, models.SourceBartender, "dana")
	require.True(t, resp.Success)
	prior, err := routeStore.GetRoute(2)
	require.NoError(t, err)
	require.NotNil(t, prior)
	require.NotNil(t, prior.ManualOverrideUntil)
	priorUntil := *prior.ManualOverrideUntil

	// A system re-route of the same output changes the input only.
	resp = svc.ApplyRoute(2, 8, models.SourceSystem, "")
	require.True(t, resp.Success)
	assert.Nil(t, resp.Override)

	after, err := routeStore.GetRoute(2)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, 8, after.InputNumber)
	require.NotNil(t, after.ManualOverrideUntil)
	assert.Equal(t, priorUntil, *after.ManualOverrideUntil, "system source must not modify an existing override")
	assert.True(t, after.OverrideActive(now))

	// And its audit row carries no override window.
	require.Len(t, routeStore.logEntries, 2)
	assert.Nil(t, routeStore.logEntries[1].OverrideUntil)
}

func TestApplyRoute_AISchedulerIsAutomated(t *testing.T) {
	svc, _, routeStore, _ := newRoutingFixture()

	resp := svc.ApplyRoute(3, 5, models.SourceAIScheduler, "game-day-plan")

	require.True(t, resp.Success)
	assert.Nil(t, resp.Override)
	assert.Empty(t, routeStore.manualSaves)
	require.Len(t, routeStore.autoSaves, 1)
	assert.Equal(t, [2]int{3, 5}, routeStore.autoSaves[0])
}

func TestApplyRoute_ManualRepeatResetsWindow(t *testing.T) {
	svc, _, routeStore, _ := newRoutingFixture()

	resp := svc.ApplyRoute(2, 5, models.SourceBartender, "dana")
	require.True(t, resp.Success)
	first := routeStore.manualSaves[0].overrideUntil

	// Same output re-routed to a non-event input: a fresh window is
	// computed from scratch, not stacked on the old one.
	resp = svc.ApplyRoute(2, 9, models.SourceBartender, "dana")
	require.True(t, resp.Success)
	require.Len(t, routeStore.manualSaves, 2)
	second := routeStore.manualSaves[1].overrideUntil

	assert.Equal(t, fixedClock().Add(55*time.Minute), first)
	assert.Equal(t, fixedClock().Add(240*time.Minute), second)
}

func TestApplyRoute_HardwareFailureAbortsWithoutPersistence(t *testing.T) {
	svc, mtx, routeStore, _ := newRoutingFixture()
	mtx.err = fmt.Errorf("switcher timeout")

	resp := svc.ApplyRoute(2, 5, models.SourceBartender, "dana")

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "matrix switch failed")
	assert.Empty(t, routeStore.manualSaves)
	assert.Empty(t, routeStore.autoSaves)
	assert.Empty(t, routeStore.logEntries)
}

func TestApplyRoute_PersistenceFailureIsSwallowed(t *testing.T) {
	svc, mtx, routeStore, _ := newRoutingFixture()
	routeStore.saveErr = fmt.Errorf("deadlock found when trying to get lock")
	routeStore.logErr = fmt.Errorf("deadlock found when trying to get lock")

	resp := svc.ApplyRoute(2, 5, models.SourceBartender, "dana")

	// The hardware switched, so the request succeeded.
	require.Len(t, mtx.calls, 1)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Override)
	assert.Equal(t, 55, resp.Override.DurationMinutes)
}

func TestApplyRoute_RejectsUnknownSource(t *testing.T) {
	svc, mtx, _, _ := newRoutingFixture()

	resp := svc.ApplyRoute(2, 5, models.RouteSource("gremlin"), "")

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown route source")
	assert.Empty(t, mtx.calls, "invalid source must not reach the hardware")
}

func TestRecordTune(t *testing.T) {
	svc, _, _, channelStore := newRoutingFixture()

	t.Run("normalizes the channel number", func(t *testing.T) {
		err := svc.RecordTune(models.TuneNotification{
			InputNumber:   6,
			ChannelNumber: "0702.1",
			DeviceType:    "directv",
		})
		require.NoError(t, err)
		require.Len(t, channelStore.saved, 1)
		assert.Equal(t, "702-1", channelStore.saved[0].ChannelNumber)
		assert.Equal(t, fixedClock(), channelStore.saved[0].LastTuned)
	})

	t.Run("rejects empty channel number", func(t *testing.T) {
		err := svc.RecordTune(models.TuneNotification{InputNumber: 6})
		assert.Error(t, err)
	})

	t.Run("propagates store failures", func(t *testing.T) {
		channelStore.saveErr = fmt.Errorf("disk full")
		err := svc.RecordTune(models.TuneNotification{InputNumber: 6, ChannelNumber: "9"})
		assert.Error(t, err)
	})
}

func TestRevertExpiredOverrides(t *testing.T) {
	svc, _, routeStore, _ := newRoutingFixture()
	routeStore.sweepN = 3

	svc.RevertExpiredOverrides()

	require.Len(t, routeStore.sweeps, 1)
	assert.Equal(t, fixedClock(), routeStore.sweeps[0])

	t.Run("sweep errors do not panic and are retried next tick", func(t *testing.T) {
		routeStore.sweepErr = fmt.Errorf("lost connection")
		svc.RevertExpiredOverrides()
		assert.Len(t, routeStore.sweeps, 2)
	})
}
