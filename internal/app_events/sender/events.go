package sender

import (
	"net"
	"time"

	appevents "github.com/rescp17/directOTA/internal/app_events"
)

// --- UI Messages (from App to UI) ---

// StatusUpdateMsg reports a state change of the session.
type StatusUpdateMsg struct {
	appevents.UIMessage
	State   string
	Message string
}

// DeviceIdentifiedMsg is sent once the device answered the identify probe.
type DeviceIdentifiedMsg struct {
	appevents.UIMessage
	Device net.Addr
	RTT    time.Duration
}

type ProgressUpdateMsg struct {
	appevents.UIMessage
	TotalBytes       int64
	TransferredBytes int64
	TransferRate     float64 // bytes per second
	ETA              time.Duration
	OverallProgress  float64 // percentage 0-100
}

// TransferCompleteMsg is the terminal message of a successful run.
type TransferCompleteMsg struct {
	appevents.UIMessage
	BytesSent int64
	Chunks    int
	Duration  time.Duration
}

// TransferSkippedMsg is the terminal message of a run disabled by configuration.
type TransferSkippedMsg struct {
	appevents.UIMessage
	Reason string
}

var (
	_ appevents.AppUIMessage = StatusUpdateMsg{}
	_ appevents.AppUIMessage = DeviceIdentifiedMsg{}
	_ appevents.AppUIMessage = ProgressUpdateMsg{}
	_ appevents.AppUIMessage = TransferCompleteMsg{}
	_ appevents.AppUIMessage = TransferSkippedMsg{}
)
