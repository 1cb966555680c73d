package ui

import (
	"context"

	"github.com/brewdash/brewdash/internal/domain"
)

type CommandSender interface {
	RequestChange(p domain.Parameter, value float64) error
	SetBrewing(ctx context.Context, on bool) error
	RefreshConfig(ctx context.Context) (domain.DeviceSettings, error)
}

type ConnectionController interface {
	Toggle()
	ClearSeries()
}
