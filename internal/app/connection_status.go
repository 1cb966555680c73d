package app

import (
	"net"
	"strconv"
	"strings"

	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/connectors"
)

func TransportNameFromConnector(connector config.ConnectorType) string {
	switch connector {
	case config.ConnectorWebSocket:
		return "websocket"
	case config.ConnectorSerial:
		return "serial"
	default:
		if value := strings.TrimSpace(string(connector)); value != "" {
			return value
		}

		return "unknown"
	}
}

func ConnectionTarget(cfg config.DeviceConfig) string {
	switch cfg.Connector {
	case config.ConnectorWebSocket:
		host := strings.TrimSpace(cfg.Host)
		if host == "" {
			return ""
		}
		port := cfg.StreamPort
		if port <= 0 {
			port = config.DefaultStreamPort
		}

		return "ws://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/ws"
	case config.ConnectorSerial:
		return strings.TrimSpace(cfg.SerialPort)
	default:
		return ""
	}
}

func ConnectionStatusFromConfig(cfg config.DeviceConfig) connectors.ConnectionStatus {
	status := connectors.ConnectionStatus{
		State:         connectors.ConnectionStateDisconnected,
		TransportName: TransportNameFromConnector(cfg.Connector),
		Target:        ConnectionTarget(cfg),
	}
	if status.Target != "" {
		status.State = connectors.ConnectionStateConnecting
	}

	return status
}
