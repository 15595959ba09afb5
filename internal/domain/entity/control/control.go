package control

// Status is the feed health classification driven by the watchdog.
type Status string

const (
	StatusOnline       Status = "ONLINE"
	StatusOffline      Status = "OFFLINE"
	StatusReconnecting Status = "RECONNECTING"
)

func (s Status) String() string {
	return string(s)
}

// WatchdogState is a read-only snapshot of the watchdog.
type WatchdogState struct {
	Status            Status `json:"status"`
	LastTickTimestamp int64  `json:"last_tick_timestamp"`
	Armed             bool   `json:"armed"`
}

// Well-known operator commands. The relay accepts any non-empty string.
const (
	CommandPause    = "PAUSE"
	CommandResume   = "RESUME"
	CommandCloseAll = "CLOSE_ALL"
)

// RestartRequest asks the bridge supervisor to restart the feed process.
type RestartRequest struct {
	Reason      string
	RequestedAt int64
}

// RestartResult reports how a restart request was handled.
type RestartResult struct {
	Request RestartRequest
	Err     error
	Output  string
}

// BridgeSettings are the credentials the bridge uses to log in to its terminal.
type BridgeSettings struct {
	Login    int64  `json:"login"`
	Password string `json:"password"`
	Server   string `json:"server"`
}

// MaskedPassword replaces the stored password in read responses.
const MaskedPassword = "****"

// Complete reports whether every credential field is set.
func (s BridgeSettings) Complete() bool {
	return s.Login != 0 && s.Password != "" && s.Server != ""
}

// Masked returns a copy safe to show to the operator.
func (s BridgeSettings) Masked() BridgeSettings {
	s.Password = MaskedPassword
	return s
}
