package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/resources"
)

const (
	tabEspresso = "Espresso"
	tabConfig   = "Config"
)

type mainView struct {
	left                *fyne.Container
	rightStack          fyne.CanvasObject
	sidebar             *sidebar
	espresso            *espressoTab
	config              *configTab
	banner              *errorBanner
	connStatusPresenter *connectionStatusPresenter
	tray                *systemTray
}

func buildMainView(
	dep RuntimeDependencies,
	window fyne.Window,
	initialVariant fyne.ThemeVariant,
	initialStatus connectors.ConnectionStatus,
) mainView {
	connStatusLabel := widget.NewLabel("")
	connStatusLabel.Truncation = fyne.TextTruncateEllipsis
	connToggle := widget.NewButton("", func() {
		if dep.Actions.Connection != nil {
			dep.Actions.Connection.Toggle()
		}
	})

	banner := newErrorBanner()
	espresso := newEspressoTab(dep)
	configView := newConfigTab(dep, banner, connStatusLabel, connToggle)

	connStatusPresenter := newConnectionStatusPresenter(
		window,
		connStatusLabel,
		connToggle,
		initialStatus,
		initialVariant,
	)
	nav := newSidebar(initialVariant, []sidebarTab{
		{name: tabEspresso, icon: resources.UIIconEspresso, content: espresso.Content()},
		{name: tabConfig, icon: resources.UIIconConfig, content: &tabWithOnShow{CanvasObject: configView.Content(), onShow: configView.onShow}},
	}, connStatusPresenter.SidebarIcon())

	return mainView{
		left:                nav.left,
		rightStack:          container.NewBorder(banner.Content(), nil, nil, nil, nav.rightStack),
		sidebar:             nav,
		espresso:            espresso,
		config:              configView,
		banner:              banner,
		connStatusPresenter: connStatusPresenter,
	}
}
