// Package resources embeds the dashboard's icons.
package resources

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

type UIIcon string

const (
	UIIconEspresso     UIIcon = "espresso"
	UIIconConfig       UIIcon = "config"
	UIIconConnected    UIIcon = "connected"
	UIIconDisconnected UIIcon = "disconnected"
)

var uiDarkIconResources = map[UIIcon]fyne.Resource{
	UIIconEspresso:     fyne.NewStaticResource("resources/ui/dark/espresso.svg", uiDarkEspresso),
	UIIconConfig:       fyne.NewStaticResource("resources/ui/dark/config.svg", uiDarkConfig),
	UIIconConnected:    fyne.NewStaticResource("resources/ui/dark/connected.svg", uiDarkConnected),
	UIIconDisconnected: fyne.NewStaticResource("resources/ui/dark/disconnected.svg", uiDarkDisconnected),
}

var uiLightIconResources = map[UIIcon]fyne.Resource{
	UIIconEspresso:     fyne.NewStaticResource("resources/ui/light/espresso.svg", uiLightEspresso),
	UIIconConfig:       fyne.NewStaticResource("resources/ui/light/config.svg", uiLightConfig),
	UIIconConnected:    fyne.NewStaticResource("resources/ui/light/connected.svg", uiLightConnected),
	UIIconDisconnected: fyne.NewStaticResource("resources/ui/light/disconnected.svg", uiLightDisconnected),
}

// Light-variant icons are drawn dark to contrast with a light panel.
var appIconResources = map[fyne.ThemeVariant]fyne.Resource{
	theme.VariantDark:  fyne.NewStaticResource("resources/ui/dark/icon_64.png", uiDarkIcon64),
	theme.VariantLight: fyne.NewStaticResource("resources/ui/light/icon_64.png", uiLightIcon64),
}

var trayIconResources = map[fyne.ThemeVariant]fyne.Resource{
	theme.VariantDark:  fyne.NewStaticResource("resources/ui/dark/icon_32.png", uiDarkIcon32),
	theme.VariantLight: fyne.NewStaticResource("resources/ui/light/icon_32.png", uiLightIcon32),
}

func UIIconResource(icon UIIcon, variant fyne.ThemeVariant) fyne.Resource {
	if variant == theme.VariantLight {
		if res, ok := uiLightIconResources[icon]; ok {
			return res
		}
	}
	if res, ok := uiDarkIconResources[icon]; ok {
		return res
	}

	return nil
}

func AppIconResource(variant fyne.ThemeVariant) fyne.Resource {
	if res, ok := appIconResources[variant]; ok {
		return res
	}

	return appIconResources[theme.VariantDark]
}

func TrayIconResource(variant fyne.ThemeVariant) fyne.Resource {
	if res, ok := trayIconResources[variant]; ok {
		return res
	}

	return trayIconResources[theme.VariantDark]
}
