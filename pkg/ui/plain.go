package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	appevents "github.com/rescp17/directOTA/internal/app_events"
	senderEvent "github.com/rescp17/directOTA/internal/app_events/sender"
	"github.com/rescp17/directOTA/internal/style"
	"github.com/rescp17/directOTA/internal/util"
)

const labelWidth = 14

// progressStep is the percentage between two printed progress lines.
const progressStep = 10

// PrintMessages writes app messages as log lines until a terminal message
// arrives or ctx is done. It is the non-interactive counterpart of the TUI.
func PrintMessages(ctx context.Context, w io.Writer, msgs <-chan appevents.AppUIMessage) {
	nextProgress := float64(progressStep)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-msgs:
			switch msg := msg.(type) {
			case senderEvent.StatusUpdateMsg:
				printLine(w, msg.State, msg.Message)
			case senderEvent.DeviceIdentifiedMsg:
				printLine(w, "device", fmt.Sprintf("%s replied in %s", msg.Device, msg.RTT.Round(time.Microsecond)))
			case senderEvent.ProgressUpdateMsg:
				if msg.OverallProgress >= nextProgress {
					printLine(w, "progress", fmt.Sprintf("%3.0f%%  %s / %s  %s",
						msg.OverallProgress, util.FormatSize(msg.TransferredBytes),
						util.FormatSize(msg.TotalBytes), util.FormatRate(msg.TransferRate)))
					for nextProgress <= msg.OverallProgress {
						nextProgress += progressStep
					}
				}
			case senderEvent.TransferCompleteMsg:
				printLine(w, "done", style.SuccessStyle.Render(fmt.Sprintf("sent %s in %d chunks (%s)",
					util.FormatSize(msg.BytesSent), msg.Chunks, util.FormatDuration(msg.Duration))))
				return
			case senderEvent.TransferSkippedMsg:
				printLine(w, "skipped", msg.Reason)
				return
			case appevents.AppErrorMsg:
				printLine(w, "failed", style.ErrorStyle.Render(fmt.Sprintf("%s: %v", msg.Phase, msg.Err)))
				return
			}
		}
	}
}

func printLine(w io.Writer, label, text string) {
	fmt.Fprintf(w, "%s %s\n", style.LabelStyle.Render(util.PadRight("["+label+"]", labelWidth)), text)
}
