package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	appevents "github.com/rescp17/directOTA/internal/app_events"
	senderEvent "github.com/rescp17/directOTA/internal/app_events/sender"
	"github.com/rescp17/directOTA/internal/style"
	"github.com/rescp17/directOTA/internal/util"
	"github.com/rescp17/directOTA/pkg/ui/components"
)

// AppController is the part of the OTA app the UI depends on.
type AppController interface {
	UIMessages() <-chan appevents.AppUIMessage
}

type model struct {
	appController AppController
	cancel        context.CancelFunc
	target        string
	spinner       spinner.Model
	bar           *components.ProgressBar
	log           []string
	transferring  bool
	finished      bool
	err           error
}

// InitialModel builds the flashing view for target. cancel is called when
// the operator quits before the run finished.
func InitialModel(app AppController, target string, cancel context.CancelFunc) model {
	return model{
		appController: app,
		cancel:        cancel,
		target:        target,
		spinner:       style.NewSpinner(),
		bar:           components.NewProgressBar(components.DefaultProgressConfig()),
	}
}

// listenForAppMessages is a command that listens for messages from the app controller.
func (m model) listenForAppMessages() tea.Cmd {
	return func() tea.Msg {
		return <-m.appController.UIMessages()
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForAppMessages())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.finished && m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil

	case senderEvent.StatusUpdateMsg:
		m.log = append(m.log, msg.Message)
		if msg.State == "transferring" {
			m.transferring = true
		}
		return m, m.listenForAppMessages()

	case senderEvent.DeviceIdentifiedMsg:
		return m, m.listenForAppMessages()

	case senderEvent.ProgressUpdateMsg:
		m.bar.Update(components.ProgressData{
			Current: msg.TransferredBytes,
			Total:   msg.TotalBytes,
			Rate:    msg.TransferRate,
			ETA:     msg.ETA,
		})
		return m, m.listenForAppMessages()

	case senderEvent.TransferCompleteMsg:
		m.finished = true
		m.bar.SetStatus("complete")
		m.log = append(m.log, fmt.Sprintf("Sent %s in %d chunks (%s)",
			util.FormatSize(msg.BytesSent), msg.Chunks, util.FormatDuration(msg.Duration)))
		return m, tea.Quit

	case senderEvent.TransferSkippedMsg:
		m.finished = true
		m.log = append(m.log, "OTA skipped: "+msg.Reason)
		return m, tea.Quit

	case appevents.AppErrorMsg:
		m.finished = true
		m.err = msg.Err
		m.bar.SetStatus("error")
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("DirectOTA → " + m.target))
	b.WriteString("\n\n")

	for _, line := range m.log {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(style.ErrorStyle.Render("✗ " + m.err.Error()))
		b.WriteString("\n")
	case m.transferring || m.finished:
		b.WriteString(m.bar.Render())
		b.WriteString("\n")
	default:
		b.WriteString(m.spinner.View() + " working...\n")
	}

	if !m.finished {
		b.WriteString(style.HelpStyle.Render("\nPress ctrl + c to abort"))
	}
	return style.DocStyle.Render(b.String())
}
