package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/brewdash/brewdash/internal/bus"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/domain"
)

const dashboardRefreshInterval = 250 * time.Millisecond

var uiEventTopics = []string{
	connectors.TopicConnStatus,
	connectors.TopicMachineState,
	connectors.TopicSeries,
	connectors.TopicEditState,
	connectors.TopicCommandDone,
	connectors.TopicDeviceConfig,
}

// uiEventHandlers receives bus events off the UI goroutine. Nil handlers
// are skipped.
type uiEventHandlers struct {
	OnConnStatus    func(connectors.ConnectionStatus)
	OnMachineUpdate func(domain.MachineUpdate)
	OnSeriesCleared func()
	OnEditState     func(connectors.EditStateChange)
	OnCommandResult func(connectors.CommandResult)
	OnDeviceConfig  func(domain.DeviceSettings)
}

func (h uiEventHandlers) dispatch(raw any) {
	switch event := raw.(type) {
	case connectors.ConnectionStatus:
		if h.OnConnStatus != nil {
			h.OnConnStatus(event)
		}
	case domain.MachineUpdate:
		if h.OnMachineUpdate != nil {
			h.OnMachineUpdate(event)
		}
	case domain.SeriesCleared:
		if h.OnSeriesCleared != nil {
			h.OnSeriesCleared()
		}
	case connectors.EditStateChange:
		if h.OnEditState != nil {
			h.OnEditState(event)
		}
	case connectors.CommandResult:
		if h.OnCommandResult != nil {
			h.OnCommandResult(event)
		}
	case domain.DeviceSettings:
		if h.OnDeviceConfig != nil {
			h.OnDeviceConfig(event)
		}
	default:
		appLogger.Debug("ignoring unexpected UI event payload", "payload_type", fmt.Sprintf("%T", raw))
	}
}

func startUIEventListeners(messageBus bus.MessageBus, handlers uiEventHandlers) func() {
	if messageBus == nil {
		appLogger.Debug("skipping UI event listeners: message bus is nil")

		return func() {}
	}

	sub := messageBus.Subscribe(uiEventTopics...)
	appLogger.Debug("subscribed to UI bus topics", "topics", uiEventTopics)
	done := make(chan struct{})
	var stopOnce sync.Once

	go func() {
		for {
			select {
			case <-done:
				return
			case raw, ok := <-sub:
				if !ok {
					appLogger.Debug("UI event subscription closed")

					return
				}
				select {
				case <-done:
					return
				default:
				}
				handlers.dispatch(raw)
			}
		}
	}()

	return func() {
		stopOnce.Do(func() {
			appLogger.Debug("stopping UI event listeners")
			close(done)
			messageBus.Unsubscribe(sub, uiEventTopics...)
		})
	}
}

// startRefreshLoop calls tick on a fixed interval until stopped.
func startRefreshLoop(interval time.Duration, tick func()) func() {
	if tick == nil || interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var stopOnce sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				tick()
			}
		}
	}()

	return func() {
		stopOnce.Do(func() {
			close(done)
		})
	}
}
