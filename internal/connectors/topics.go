package connectors

const (
	TopicConnStatus   = "conn.status"
	TopicRawFrameIn   = "raw.frame.in"
	TopicMachineState = "machine.state"
	TopicSeries       = "telemetry.series"
	TopicEditState    = "command.edit"
	TopicCommandDone  = "command.result"
	TopicDeviceConfig = "device.config"
)
