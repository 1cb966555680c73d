package ui

import (
	"fyne.io/fyne/v2"

	"github.com/brewdash/brewdash/internal/resources"
)

// themeRuntime swaps variant-specific icons whenever the OS theme flips.
type themeRuntime struct {
	fyApp   fyne.App
	targets []func(fyne.ThemeVariant)
}

func newThemeRuntime(fyApp fyne.App) *themeRuntime {
	return &themeRuntime{fyApp: fyApp}
}

// Register adds a theme target. Nil targets are ignored.
func (r *themeRuntime) Register(apply func(fyne.ThemeVariant)) {
	if apply == nil {
		return
	}
	r.targets = append(r.targets, apply)
}

func (r *themeRuntime) BindSettings() {
	r.fyApp.Settings().AddListener(func(settings fyne.Settings) {
		appLogger.Debug("theme settings changed")
		r.Apply(settings.ThemeVariant())
	})
}

func (r *themeRuntime) Apply(variant fyne.ThemeVariant) {
	appLogger.Debug("applying theme resources", "theme", variant, "targets", len(r.targets))
	r.fyApp.SetIcon(resources.AppIconResource(variant))
	for _, apply := range r.targets {
		apply(variant)
	}
}
