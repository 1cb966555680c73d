package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/brewdash/brewdash/internal/resources"
)

const sidebarConnIconSize float32 = 32

var tabShortcutKeys = []fyne.KeyName{fyne.Key1, fyne.Key2, fyne.Key3, fyne.Key4}

type sidebarTab struct {
	name    string
	icon    resources.UIIcon
	content fyne.CanvasObject
}

// sidebar is the icon rail on the left plus the stack of tab pages it
// switches between. The first tab starts active.
type sidebar struct {
	left       *fyne.Container
	rightStack *fyne.Container

	tabs    []sidebarTab
	buttons []*iconNavButton
	active  int
}

func newSidebar(initialVariant fyne.ThemeVariant, tabs []sidebarTab, connIcon *widget.Icon) *sidebar {
	s := &sidebar{
		left:       container.NewVBox(),
		rightStack: container.NewStack(),
		active:     -1,
	}
	for _, tab := range tabs {
		if tab.content == nil {
			continue
		}
		s.tabs = append(s.tabs, tab)
	}

	for i, tab := range s.tabs {
		tab.content.Hide()
		s.rightStack.Add(tab.content)

		button := newIconNavButton(resources.UIIconResource(tab.icon, initialVariant), func() {
			s.selectIndex(i)
		})
		button.SetText(tab.name)
		s.buttons = append(s.buttons, button)
		s.left.Add(button)
	}
	if len(s.tabs) > 0 {
		s.active = 0
		s.tabs[0].content.Show()
	}
	s.updateSelection()

	s.left.Add(layout.NewSpacer())
	if connIcon != nil {
		s.left.Add(container.NewCenter(container.NewGridWrap(
			fyne.NewSquareSize(sidebarConnIconSize),
			connIcon,
		)))
	}

	return s
}

// Select shows the named tab. It reports false for unknown names.
func (s *sidebar) Select(name string) bool {
	for i, tab := range s.tabs {
		if tab.name == name {
			s.selectIndex(i)

			return true
		}
	}

	return false
}

func (s *sidebar) Active() string {
	if s.active < 0 {
		return ""
	}

	return s.tabs[s.active].name
}

// SetBadge marks a tab as having live activity. Unknown names are ignored.
func (s *sidebar) SetBadge(name string, on bool) {
	if s == nil {
		return
	}
	for i, tab := range s.tabs {
		if tab.name == name {
			s.buttons[i].SetBadge(on)

			return
		}
	}
}

func (s *sidebar) ApplyTheme(variant fyne.ThemeVariant) {
	for i, button := range s.buttons {
		button.SetIcon(resources.UIIconResource(s.tabs[i].icon, variant))
	}
}

type shortcutRegistrar interface {
	AddShortcut(shortcut fyne.Shortcut, handler func(fyne.Shortcut))
}

// BindShortcuts maps Ctrl/Cmd+1.. to the tabs in order.
func (s *sidebar) BindShortcuts(canvas shortcutRegistrar) {
	for i, tab := range s.tabs {
		if i >= len(tabShortcutKeys) {
			break
		}
		name := tab.name
		canvas.AddShortcut(&desktop.CustomShortcut{
			KeyName:  tabShortcutKeys[i],
			Modifier: fyne.KeyModifierShortcutDefault,
		}, func(fyne.Shortcut) {
			s.Select(name)
		})
	}
}

func (s *sidebar) selectIndex(i int) {
	if i == s.active || i < 0 || i >= len(s.tabs) {
		return
	}

	appLogger.Debug("switching sidebar tab", "from", s.Active(), "to", s.tabs[i].name)
	if s.active >= 0 {
		s.tabs[s.active].content.Hide()
	}
	s.active = i
	next := s.tabs[i].content
	next.Show()
	if onShow, ok := next.(interface{ OnShow() }); ok {
		onShow.OnShow()
	}
	s.updateSelection()
	s.rightStack.Refresh()
}

func (s *sidebar) updateSelection() {
	for i, button := range s.buttons {
		button.SetSelected(i == s.active && !button.Disabled())
	}
}
