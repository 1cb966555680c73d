package ui

import (
	brewapp "github.com/brewdash/brewdash/internal/app"
)

func BuildRuntimeDependencies(rt *brewapp.Runtime, launch LaunchOptions, onQuit func()) RuntimeDependencies {
	dep := RuntimeDependencies{
		Launch: launch,
		Actions: ActionDependencies{
			OnQuit: onQuit,
		},
	}

	if rt == nil {
		return dep
	}

	dep.Data = DataDependencies{
		Config:            rt.CurrentConfig(),
		CurrentConfig:     rt.CurrentConfig,
		Machine:           rt.Machine,
		Buffer:            rt.Buffer,
		ShotTimer:         rt.ShotTimer,
		Bus:               rt.Bus,
		CurrentConnStatus: rt.CurrentConnStatus,
	}

	dep.Actions.OnSave = rt.SaveAndApplyConfig
	dep.Actions.OnClearDB = rt.ClearDatabase

	if rt.Dispatcher != nil {
		dep.Actions.Commands = rt.Dispatcher
	}
	dep.Actions.Connection = rt

	return dep
}
