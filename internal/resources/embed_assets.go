package resources

import _ "embed"

//go:embed ui/dark/espresso.svg
var uiDarkEspresso []byte

//go:embed ui/dark/config.svg
var uiDarkConfig []byte

//go:embed ui/dark/connected.svg
var uiDarkConnected []byte

//go:embed ui/dark/disconnected.svg
var uiDarkDisconnected []byte

//go:embed ui/light/espresso.svg
var uiLightEspresso []byte

//go:embed ui/light/config.svg
var uiLightConfig []byte

//go:embed ui/light/connected.svg
var uiLightConnected []byte

//go:embed ui/light/disconnected.svg
var uiLightDisconnected []byte

//go:embed ui/dark/icon_32.png
var uiDarkIcon32 []byte

//go:embed ui/dark/icon_64.png
var uiDarkIcon64 []byte

//go:embed ui/light/icon_32.png
var uiLightIcon32 []byte

//go:embed ui/light/icon_64.png
var uiLightIcon64 []byte
