package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"go.bug.st/serial"

	brewapp "github.com/brewdash/brewdash/internal/app"
	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/domain"
)

const (
	connectorOptionWebSocket = "WebSocket"
	connectorOptionSerial    = "Serial"

	refreshConfigTimeout = 10 * time.Second
)

var defaultSerialBaudOptions = []string{"9600", "19200", "38400", "57600", "115200", "230400", "460800", "921600"}

// parameterControl is one slider bound to a controller parameter.
type parameterControl struct {
	param      domain.Parameter
	slider     *widget.Slider
	valueLabel *widget.Label
	stateLabel *widget.Label

	// syncing suppresses OnChanged while the slider follows inbound state.
	syncing bool
	pending bool
}

func newParameterControl(p domain.Parameter, initial float64, onChange func(domain.Parameter, float64)) *parameterControl {
	r := p.Range()
	c := &parameterControl{
		param:      p,
		slider:     widget.NewSlider(r.Min, r.Max),
		valueLabel: widget.NewLabelWithStyle(formatParameterValue(p, initial), fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true}),
		stateLabel: widget.NewLabel(""),
	}
	c.stateLabel.Importance = widget.LowImportance
	c.slider.Step = r.Step
	c.slider.Value = snapToStep(initial, r)
	c.slider.OnChanged = func(v float64) {
		if c.syncing {
			return
		}
		v = snapToStep(v, r)
		c.valueLabel.SetText(formatParameterValue(p, v))
		if onChange != nil {
			onChange(p, v)
		}
	}

	return c
}

// SetValue moves the slider to an inbound value unless the user has an
// edit in progress for this parameter.
func (c *parameterControl) SetValue(v float64) {
	if c.pending {
		return
	}
	v = snapToStep(v, c.param.Range())
	c.valueLabel.SetText(formatParameterValue(c.param, v))
	if c.slider.Value == v {
		return
	}
	c.syncing = true
	c.slider.SetValue(v)
	c.syncing = false
}

func (c *parameterControl) SetEditState(state connectors.EditState) {
	c.pending = state != connectors.EditStateIdle
	c.stateLabel.SetText(editStateText(state))
}

func (c *parameterControl) row() fyne.CanvasObject {
	header := container.NewHBox(
		widget.NewLabelWithStyle(c.param.Label(), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		layout.NewSpacer(),
		c.stateLabel,
		c.valueLabel,
	)

	return container.NewVBox(header, c.slider)
}

type configTab struct {
	root     fyne.CanvasObject
	controls map[domain.Parameter]*parameterControl
	status   *widget.Label
	onShow   func()
}

func (t *configTab) Content() fyne.CanvasObject {
	return t.root
}

func (t *configTab) ApplyState(state domain.ScalarState) {
	for p, control := range t.controls {
		control.SetValue(state.Value(p))
	}
}

func (t *configTab) ApplySettings(settings domain.DeviceSettings) {
	state := domain.ScalarState{Settings: settings}
	for _, p := range []domain.Parameter{domain.ParamPreInfusionTime, domain.ParamPreInfusionPressure, domain.ParamShotPressure} {
		if control, ok := t.controls[p]; ok {
			control.SetValue(state.Value(p))
		}
	}
}

func (t *configTab) ApplyEditState(change connectors.EditStateChange) {
	if control, ok := t.controls[domain.Parameter(change.Parameter)]; ok {
		control.SetEditState(change.State)
	}
}

func newConfigTab(dep RuntimeDependencies, banner *errorBanner, connStatusLabel *widget.Label, connToggle *widget.Button) *configTab {
	current := dep.Data.Config
	if dep.Data.CurrentConfig != nil {
		current = dep.Data.CurrentConfig()
	}
	current.FillMissingDefaults()

	runOnUI := dep.UIHooks.RunOnUI
	if runOnUI == nil {
		runOnUI = fyne.Do
	}
	runAsync := dep.UIHooks.RunAsync
	if runAsync == nil {
		runAsync = func(fn func()) { go fn() }
	}
	currentWindow := dep.UIHooks.CurrentWindow
	if currentWindow == nil {
		currentWindow = func() fyne.Window { return nil }
	}
	showConfirm := dep.UIHooks.ShowConfirm
	if showConfirm == nil {
		showConfirm = func(title, message string, onConfirm func(), window fyne.Window) {
			dialog.ShowConfirm(title, message, func(ok bool) {
				if ok {
					onConfirm()
				}
			}, window)
		}
	}

	status := widget.NewLabel("")
	status.Wrapping = fyne.TextWrapWord
	tab := &configTab{
		controls: make(map[domain.Parameter]*parameterControl),
		status:   status,
	}

	// Sliders
	initial := domain.DefaultScalarState()
	if dep.Data.Machine != nil {
		initial = dep.Data.Machine.Snapshot()
	}
	onParameterChange := func(p domain.Parameter, v float64) {
		if banner != nil {
			banner.Hide()
		}
		if dep.Actions.Commands == nil {
			return
		}
		if err := dep.Actions.Commands.RequestChange(p, v); err != nil {
			appLogger.Warn("parameter change rejected", "parameter", p, "value", v, "error", err)
			status.SetText("Update rejected: " + err.Error())
		}
	}
	setpointRows := container.NewVBox()
	extractionRows := container.NewVBox()
	for _, p := range domain.Parameters() {
		control := newParameterControl(p, initial.Value(p), onParameterChange)
		tab.controls[p] = control
		if p == domain.ParamSetpoint {
			setpointRows.Add(control.row())
		} else {
			extractionRows.Add(control.row())
		}
	}

	refreshConfig := func() {
		if dep.Actions.Commands == nil {
			return
		}
		runAsync(func() {
			ctx, cancel := context.WithTimeout(context.Background(), refreshConfigTimeout)
			defer cancel()
			settings, err := dep.Actions.Commands.RefreshConfig(ctx)
			runOnUI(func() {
				if err != nil {
					status.SetText("Config refresh failed: " + err.Error())

					return
				}
				tab.ApplySettings(settings)
				status.SetText("Config loaded from machine")
			})
		})
	}
	refreshButton := widget.NewButton("Reload from machine", refreshConfig)
	if dep.Actions.Commands == nil {
		refreshButton.Disable()
	}
	tab.onShow = func() {
		if dep.Data.CurrentConnStatus != nil && dep.Data.CurrentConnStatus().IsConnected() {
			refreshConfig()
		}
	}

	// Connection
	connectorSelect := widget.NewSelect([]string{connectorOptionWebSocket, connectorOptionSerial}, nil)
	connectorSelect.SetSelected(connectorOptionFromType(current.Device.Connector))

	hostEntry := widget.NewEntry()
	hostEntry.SetText(current.Device.Host)
	hostEntry.SetPlaceHolder("IP address or hostname")

	streamPortEntry := widget.NewEntry()
	streamPortEntry.SetText(strconv.Itoa(current.Device.StreamPort))
	httpPortEntry := widget.NewEntry()
	httpPortEntry.SetText(strconv.Itoa(current.Device.HTTPPort))

	serialPortSelect := widget.NewSelect(nil, nil)
	serialBaudSelect := widget.NewSelect(defaultSerialBaudOptions, nil)
	serialBaudSelect.SetSelected(strconv.Itoa(current.Device.SerialBaud))

	refreshPorts := func() {
		selectedPort := strings.TrimSpace(serialPortSelect.Selected)
		ports, err := serial.GetPortsList()
		if err != nil {
			status.SetText("Failed to list serial ports: " + err.Error())

			return
		}
		sort.Strings(ports)
		ports = append(ports, current.Device.SerialPort, selectedPort)
		ports = uniqueValues(ports)
		serialPortSelect.SetOptions(ports)

		if selectedPort != "" {
			serialPortSelect.SetSelected(selectedPort)
		} else if current.Device.SerialPort != "" {
			serialPortSelect.SetSelected(current.Device.SerialPort)
		}
		if len(ports) == 0 {
			status.SetText("No serial ports detected")

			return
		}
		status.SetText("")
	}
	refreshPortsButton := widget.NewButton("Refresh", refreshPorts)
	serialPortRow := container.NewBorder(nil, nil, nil, refreshPortsButton, serialPortSelect)

	hostLabel := widget.NewLabel("Host")
	streamPortLabel := widget.NewLabel("Stream Port")
	httpPortLabel := widget.NewLabel("HTTP Port")
	serialPortLabel := widget.NewLabel("Serial Port")
	serialBaudLabel := widget.NewLabel("Serial Baud")

	connectionFields := container.New(layout.NewFormLayout(),
		widget.NewLabel("Connector"), connectorSelect,
		hostLabel, hostEntry,
		streamPortLabel, streamPortEntry,
		httpPortLabel, httpPortEntry,
		serialPortLabel, serialPortRow,
		serialBaudLabel, serialBaudSelect,
	)
	setConnectorFields := func(connector config.ConnectorType) {
		showSerial := connector == config.ConnectorSerial
		setVisible(!showSerial, streamPortLabel, streamPortEntry)
		setVisible(showSerial, serialPortLabel, serialPortRow, serialBaudLabel, serialBaudSelect)
	}
	connectorSelect.OnChanged = func(value string) {
		next := connectorTypeFromOption(value)
		setConnectorFields(next)
		if next == config.ConnectorSerial {
			refreshPorts()
		}
	}
	setConnectorFields(current.Device.Connector)
	if current.Device.Connector == config.ConnectorSerial {
		refreshPorts()
	}

	// Preferences
	autoShotTimer := widget.NewCheck("Start the shot timer with the brew switch", nil)
	autoShotTimer.SetChecked(current.UI.AutoShotTimer)
	startMinimized := widget.NewCheck("Start minimized to tray", nil)
	startMinimized.SetChecked(current.UI.StartMinimized)
	autostart := widget.NewCheck("Start at login", nil)
	autostart.SetChecked(current.UI.Autostart)
	notifyConnection := widget.NewCheck("Connection changes", nil)
	notifyConnection.SetChecked(current.UI.Notifications.ConnectionStatus)
	notifyFailures := widget.NewCheck("Failed updates", nil)
	notifyFailures.SetChecked(current.UI.Notifications.CommandFailures)
	notifyFocused := widget.NewCheck("Notify while the window is focused", nil)
	notifyFocused.SetChecked(current.UI.Notifications.NotifyWhenFocused)

	levelSelect := widget.NewSelect([]string{"debug", "info", "warn", "error"}, nil)
	levelSelect.SetSelected(strings.ToLower(current.Logging.Level))
	if levelSelect.Selected == "" {
		levelSelect.SetSelected("info")
	}
	logToFile := widget.NewCheck("", nil)
	logToFile.SetChecked(current.Logging.LogToFile)

	saveButton := widget.NewButton("Save", func() {
		cfg := current
		if dep.Data.CurrentConfig != nil {
			cfg = dep.Data.CurrentConfig()
		}
		connector := connectorTypeFromOption(connectorSelect.Selected)
		streamPort, err := parsePort(streamPortEntry.Text)
		if err != nil {
			status.SetText("Save failed: stream port: " + err.Error())

			return
		}
		httpPort, err := parsePort(httpPortEntry.Text)
		if err != nil {
			status.SetText("Save failed: HTTP port: " + err.Error())

			return
		}
		baud := cfg.Device.SerialBaud
		if connector == config.ConnectorSerial {
			baud, err = parseSerialBaud(serialBaudSelect.Selected)
			if err != nil {
				status.SetText("Save failed: " + err.Error())

				return
			}
		}

		cfg.Device.Connector = connector
		cfg.Device.Host = strings.TrimSpace(hostEntry.Text)
		cfg.Device.StreamPort = streamPort
		cfg.Device.HTTPPort = httpPort
		cfg.Device.SerialPort = strings.TrimSpace(serialPortSelect.Selected)
		cfg.Device.SerialBaud = baud
		cfg.UI.AutoShotTimer = autoShotTimer.Checked
		cfg.UI.StartMinimized = startMinimized.Checked
		cfg.UI.Autostart = autostart.Checked
		cfg.UI.Notifications.ConnectionStatus = notifyConnection.Checked
		cfg.UI.Notifications.CommandFailures = notifyFailures.Checked
		cfg.UI.Notifications.NotifyWhenFocused = notifyFocused.Checked
		cfg.Logging.Level = levelSelect.Selected
		cfg.Logging.LogToFile = logToFile.Checked

		if dep.Actions.OnSave == nil {
			status.SetText("Save failed: saving is not available")

			return
		}
		if err := dep.Actions.OnSave(cfg); err != nil {
			var warning *brewapp.LoginSyncWarning
			if !errors.As(err, &warning) {
				status.SetText("Save failed: " + err.Error())

				return
			}
			current = cfg
			status.SetText("Saved, but " + warning.Error())

			return
		}
		current = cfg
		status.SetText("Saved")
	})
	saveButton.Importance = widget.HighImportance

	clearDBButton := widget.NewButton("Clear local data", func() {
		if dep.Actions.OnClearDB == nil {
			status.SetText("Clearing local data is not available")

			return
		}
		showConfirm(
			"Clear local data?",
			"This removes the saved dashboard snapshot and cached settings.",
			func() {
				if err := dep.Actions.OnClearDB(); err != nil {
					status.SetText("Clear failed: " + err.Error())

					return
				}
				status.SetText("Local data cleared")
			},
			currentWindow(),
		)
	})
	if dep.Actions.OnClearDB == nil {
		clearDBButton.Disable()
	}

	if connToggle != nil && dep.Actions.Connection == nil {
		connToggle.Disable()
	}
	connectionHeader := container.NewBorder(nil, nil, nil, connToggle, connStatusLabel)

	parametersBlock := widget.NewCard("Machine", "", container.NewVBox(
		setpointRows,
		widget.NewSeparator(),
		extractionRows,
		container.NewHBox(layout.NewSpacer(), refreshButton),
	))
	connectionBlock := widget.NewCard("Connection", "", container.NewVBox(
		connectionHeader,
		connectionFields,
	))
	preferencesBlock := widget.NewCard("Preferences", "", container.NewVBox(
		autoShotTimer,
		startMinimized,
		autostart,
		widget.NewLabel("Notifications"),
		notifyConnection,
		notifyFailures,
		notifyFocused,
	))
	loggingBlock := widget.NewCard("Logging", "", widget.NewForm(
		widget.NewFormItem("Log Level", levelSelect),
		widget.NewFormItem("Log to file", logToFile),
	))
	maintenanceBlock := widget.NewCard("Maintenance", "", container.NewVBox(clearDBButton))

	content := container.NewVBox(
		parametersBlock,
		connectionBlock,
		preferencesBlock,
		loggingBlock,
		maintenanceBlock,
		saveButton,
		widget.NewLabel("Version: "+brewapp.BuildVersionWithDate()),
		status,
	)
	tab.root = container.NewVScroll(content)

	return tab
}

// tabWithOnShow lets the sidebar notify a tab when it becomes visible.
type tabWithOnShow struct {
	fyne.CanvasObject
	onShow func()
}

func (t *tabWithOnShow) OnShow() {
	if t.onShow != nil {
		t.onShow()
	}
}

func connectorOptionFromType(connector config.ConnectorType) string {
	switch connector {
	case config.ConnectorSerial:
		return connectorOptionSerial
	default:
		return connectorOptionWebSocket
	}
}

func connectorTypeFromOption(value string) config.ConnectorType {
	switch value {
	case connectorOptionSerial:
		return config.ConnectorSerial
	default:
		return config.ConnectorWebSocket
	}
}

// parsePort accepts an empty value as "use the default".
func parsePort(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", raw)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}

	return port, nil
}

func parseSerialBaud(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return config.DefaultSerialBaud, nil
	}
	baud, err := strconv.Atoi(raw)
	if err != nil || baud <= 0 {
		return 0, fmt.Errorf("invalid serial baud %q", raw)
	}

	return baud, nil
}

func uniqueValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}

	return out
}
