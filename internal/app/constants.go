package app

const (
	Name           = "brewdash"
	ConfigFilename = "config.json"
	DBFilename     = "app.db"
	LogFilename    = "app.log"
	// WriterQueueSize bounds pending snapshot and settings-cache writes.
	WriterQueueSize = 64
)
