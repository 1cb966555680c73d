package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	navIconSize  float32 = 40
	navBadgeSize float32 = 10
)

// iconNavButton is a sidebar entry: an icon with an optional caption below
// and a dot badge in the top right corner while its tab has live activity.
type iconNavButton struct {
	widget.DisableableWidget

	icon     fyne.Resource
	text     string
	onTap    func()
	selected bool
	hovered  bool
	badge    bool
}

func newIconNavButton(icon fyne.Resource, onTap func()) *iconNavButton {
	b := &iconNavButton{
		icon:  icon,
		onTap: onTap,
	}
	b.ExtendBaseWidget(b)

	return b
}

func (b *iconNavButton) SetIcon(icon fyne.Resource) {
	b.icon = icon
	b.Refresh()
}

func (b *iconNavButton) SetText(text string) {
	if b.text == text {
		return
	}
	b.text = text
	b.Refresh()
}

func (b *iconNavButton) SetSelected(selected bool) {
	if b.selected == selected {
		return
	}
	b.selected = selected
	b.Refresh()
}

func (b *iconNavButton) SetBadge(on bool) {
	if b.badge == on {
		return
	}
	b.badge = on
	b.Refresh()
}

func (b *iconNavButton) Tapped(_ *fyne.PointEvent) {
	if b.Disabled() {
		return
	}
	if b.onTap != nil {
		b.onTap()
	}
}

func (b *iconNavButton) TappedSecondary(_ *fyne.PointEvent) {}

func (b *iconNavButton) MouseIn(_ *desktop.MouseEvent) {
	b.hovered = true
	b.Refresh()
}

func (b *iconNavButton) MouseMoved(_ *desktop.MouseEvent) {}

func (b *iconNavButton) MouseOut() {
	b.hovered = false
	b.Refresh()
}

func (b *iconNavButton) CreateRenderer() fyne.WidgetRenderer {
	th := b.Theme()
	bg := canvas.NewRectangle(color.Transparent)
	bg.CornerRadius = th.Size(theme.SizeNameInputRadius)

	img := canvas.NewImageFromResource(b.icon)
	img.FillMode = canvas.ImageFillContain

	caption := canvas.NewText(b.text, th.Color(theme.ColorNameForeground, fyne.CurrentApp().Settings().ThemeVariant()))
	caption.TextSize = th.Size(theme.SizeNameCaptionText)
	caption.Alignment = fyne.TextAlignCenter

	badge := canvas.NewCircle(color.Transparent)
	badge.Hide()

	return &iconNavButtonRenderer{
		button:     b,
		background: bg,
		icon:       img,
		caption:    caption,
		badge:      badge,
		objects:    []fyne.CanvasObject{bg, img, caption, badge},
	}
}

type iconNavButtonRenderer struct {
	button     *iconNavButton
	background *canvas.Rectangle
	icon       *canvas.Image
	caption    *canvas.Text
	badge      *canvas.Circle
	objects    []fyne.CanvasObject
}

func (r *iconNavButtonRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	pad := r.button.Theme().Size(theme.SizeNamePadding)
	captionHeight := float32(0)
	if r.button.text != "" {
		captionHeight = r.caption.MinSize().Height
	}

	iconSide := min(navIconSize, size.Width-pad*2, size.Height-pad*2-captionHeight)
	iconSide = max(iconSide, 0)

	iconSize := fyne.NewSquareSize(iconSide)
	r.icon.Resize(iconSize)
	top := (size.Height - iconSide - captionHeight) / 2
	r.icon.Move(fyne.NewPos((size.Width-iconSide)/2, top))

	r.caption.Resize(fyne.NewSize(size.Width, captionHeight))
	r.caption.Move(fyne.NewPos(0, top+iconSide))

	r.badge.Resize(fyne.NewSquareSize(navBadgeSize))
	r.badge.Move(fyne.NewPos(size.Width-navBadgeSize-pad, pad))
}

func (r *iconNavButtonRenderer) MinSize() fyne.Size {
	pad := r.button.Theme().Size(theme.SizeNamePadding) * 2
	side := navIconSize + pad
	if r.button.text == "" {
		return fyne.NewSquareSize(side)
	}
	captionSize := r.caption.MinSize()

	return fyne.NewSize(max(side, captionSize.Width+pad), side+captionSize.Height)
}

func (r *iconNavButtonRenderer) Refresh() {
	th := r.button.Theme()
	v := fyne.CurrentApp().Settings().ThemeVariant()

	switch {
	case r.button.Disabled():
		r.background.FillColor = th.Color(theme.ColorNameDisabledButton, v)
	case r.button.selected:
		r.background.FillColor = th.Color(theme.ColorNameSelection, v)
	case r.button.hovered:
		r.background.FillColor = th.Color(theme.ColorNameHover, v)
	default:
		r.background.FillColor = color.Transparent
	}
	r.background.CornerRadius = th.Size(theme.SizeNameInputRadius)
	r.background.Refresh()

	icon := r.button.icon
	if r.button.Disabled() && icon != nil {
		icon = theme.NewDisabledResource(icon)
	}
	r.icon.Resource = icon
	r.icon.Refresh()

	r.caption.Text = r.button.text
	r.caption.Color = th.Color(theme.ColorNameForeground, v)
	r.caption.TextSize = th.Size(theme.SizeNameCaptionText)
	r.caption.Refresh()

	if r.button.badge {
		r.badge.FillColor = th.Color(theme.ColorNamePrimary, v)
		r.badge.Show()
	} else {
		r.badge.Hide()
	}
	r.badge.Refresh()

	r.Layout(r.button.Size())
}

func (r *iconNavButtonRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *iconNavButtonRenderer) Destroy() {}
