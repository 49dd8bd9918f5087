package settings

// Settings holds the runtime knobs of a local editing session. Everything
// has a sensible default; embedders typically ship no config file at all.
type Settings struct {
	// LogLevel is the zap level used for the session logger.
	LogLevel string `mapstructure:"logLevel" validate:"oneof=debug info warn error"`

	// SuppressAlgebraDebugLogs silences the per-compose debug logging of
	// the change family regardless of LogLevel.
	SuppressAlgebraDebugLogs bool `mapstructure:"suppressAlgebraDebugLogs"`

	// MaxPendingCommits is the backlog size above which the commit enricher
	// warns about unacknowledged local commits. 0 disables the warning.
	MaxPendingCommits int `mapstructure:"maxPendingCommits" validate:"gte=0"`
}
