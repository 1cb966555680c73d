package ui

import (
	"fyne.io/fyne/v2"

	"github.com/brewdash/brewdash/internal/bus"
	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/domain"
)

type DataDependencies struct {
	Config            config.AppConfig
	CurrentConfig     func() config.AppConfig
	Machine           *domain.MachineStore
	Buffer            *domain.TelemetryBuffer
	ShotTimer         *domain.ShotTimer
	Bus               bus.MessageBus
	CurrentConnStatus func() connectors.ConnectionStatus
}

type ActionDependencies struct {
	Commands   CommandSender
	Connection ConnectionController
	OnSave     func(cfg config.AppConfig) error
	OnClearDB  func() error
	OnQuit     func()
}

type UIHooks struct {
	CurrentWindow   func() fyne.Window
	RunOnUI         func(func())
	RunAsync        func(func())
	ShowConfirm     func(title, message string, onConfirm func(), window fyne.Window)
	ShowErrorDialog func(err error, window fyne.Window)
}

type LaunchOptions struct {
	StartHidden bool
}

type RuntimeDependencies struct {
	Data    DataDependencies
	Actions ActionDependencies
	UIHooks UIHooks
	Launch  LaunchOptions
}
