package ui

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brewdash/brewdash/internal/bus"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/domain"
)

func TestStartUIEventListenersRoutesPayloads(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	messageBus := bus.New(logger)
	defer messageBus.Close()

	var connEvents, machineEvents, clearEvents, editEvents, resultEvents, configEvents atomic.Int64
	stop := startUIEventListeners(messageBus, uiEventHandlers{
		OnConnStatus:    func(connectors.ConnectionStatus) { connEvents.Add(1) },
		OnMachineUpdate: func(domain.MachineUpdate) { machineEvents.Add(1) },
		OnSeriesCleared: func() { clearEvents.Add(1) },
		OnEditState:     func(connectors.EditStateChange) { editEvents.Add(1) },
		OnCommandResult: func(connectors.CommandResult) { resultEvents.Add(1) },
		OnDeviceConfig:  func(domain.DeviceSettings) { configEvents.Add(1) },
	})
	defer stop()

	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{State: connectors.ConnectionStateConnected})
	messageBus.Publish(connectors.TopicMachineState, domain.MachineUpdate{State: domain.DefaultScalarState()})
	messageBus.Publish(connectors.TopicSeries, domain.SeriesCleared{At: time.Now()})
	messageBus.Publish(connectors.TopicEditState, connectors.EditStateChange{Parameter: "setpoint"})
	messageBus.Publish(connectors.TopicCommandDone, connectors.CommandResult{Parameter: "setpoint"})
	messageBus.Publish(connectors.TopicDeviceConfig, domain.DeviceSettings{ShotPressure: 9})

	waitForCondition(t, func() bool {
		return connEvents.Load() == 1 &&
			machineEvents.Load() == 1 &&
			clearEvents.Load() == 1 &&
			editEvents.Load() == 1 &&
			resultEvents.Load() == 1 &&
			configEvents.Load() == 1
	})
}

func TestStartUIEventListenersStopPreventsFurtherCallbacks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	messageBus := bus.New(logger)
	defer messageBus.Close()

	var connEvents atomic.Int64
	stop := startUIEventListeners(messageBus, uiEventHandlers{
		OnConnStatus: func(connectors.ConnectionStatus) { connEvents.Add(1) },
	})

	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{State: connectors.ConnectionStateConnected})
	waitForCondition(t, func() bool {
		return connEvents.Load() == 1
	})

	stop()

	before := connEvents.Load()
	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{State: connectors.ConnectionStateDisconnected})
	time.Sleep(100 * time.Millisecond)

	if connEvents.Load() != before {
		t.Fatalf("expected no new connection callbacks after stop: before=%d after=%d", before, connEvents.Load())
	}
}

func TestStartUIEventListenersNilBusReturnsNoopStop(t *testing.T) {
	stop := startUIEventListeners(nil, uiEventHandlers{})
	stop()
	stop()
}

func TestUIEventHandlersDispatchSkipsNilHandlers(t *testing.T) {
	handlers := uiEventHandlers{}
	handlers.dispatch(connectors.ConnectionStatus{})
	handlers.dispatch(domain.MachineUpdate{})
	handlers.dispatch("unexpected")
}

func TestStartRefreshLoopTicksUntilStopped(t *testing.T) {
	var ticks atomic.Int64
	stop := startRefreshLoop(5*time.Millisecond, func() { ticks.Add(1) })

	waitForCondition(t, func() bool {
		return ticks.Load() >= 2
	})
	stop()
	stop()

	before := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	if ticks.Load() > before+1 {
		t.Fatalf("expected ticking to stop: before=%d after=%d", before, ticks.Load())
	}
}

func TestStartRefreshLoopRejectsInvalidArguments(t *testing.T) {
	startRefreshLoop(0, func() {})()
	startRefreshLoop(time.Second, nil)()
}

func waitForCondition(t *testing.T, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition was not met before timeout")
}
