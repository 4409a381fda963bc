package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rescp17/directOTA/internal/style"
	"github.com/rescp17/directOTA/internal/util"
)

// ProgressBarConfig defines the configuration for a progress bar
type ProgressBarConfig struct {
	Width          int
	ShowPercentage bool
	ShowBytes      bool
	ShowRate       bool
	ShowETA        bool
}

// DefaultProgressConfig returns a default progress bar configuration
func DefaultProgressConfig() ProgressBarConfig {
	return ProgressBarConfig{
		Width:          40,
		ShowPercentage: true,
		ShowBytes:      true,
		ShowRate:       true,
		ShowETA:        true,
	}
}

// ProgressData contains all the data needed to render a progress bar
type ProgressData struct {
	Current int64
	Total   int64
	Rate    float64 // bytes per second
	ETA     time.Duration
	Status  string // "active", "complete", "error"
}

type ProgressBar struct {
	config ProgressBarConfig
	data   ProgressData
}

func NewProgressBar(config ProgressBarConfig) *ProgressBar {
	return &ProgressBar{config: config}
}

func (pb *ProgressBar) Update(data ProgressData) {
	pb.data = data
}

// SetStatus changes the status without touching the counters.
func (pb *ProgressBar) SetStatus(status string) {
	pb.data.Status = status
}

// Percentage returns the completion in the 0-100 range.
func (pb *ProgressBar) Percentage() float64 {
	if pb.data.Total <= 0 {
		return 0
	}
	p := float64(pb.data.Current) / float64(pb.data.Total) * 100
	if p > 100 {
		return 100
	}
	return p
}

// Render renders the bar and, below it, a details line
func (pb *ProgressBar) Render() string {
	var result strings.Builder

	result.WriteString(pb.renderBar(pb.Percentage()))
	if pb.config.ShowPercentage {
		result.WriteString(fmt.Sprintf(" %.1f%%", pb.Percentage()))
	}

	var details []string
	if pb.config.ShowBytes {
		details = append(details, fmt.Sprintf("%s / %s", util.FormatSize(pb.data.Current), util.FormatSize(pb.data.Total)))
	}
	if pb.config.ShowRate && pb.data.Rate > 0 {
		details = append(details, util.FormatRate(pb.data.Rate))
	}
	if pb.config.ShowETA && pb.data.ETA > 0 {
		details = append(details, "ETA: "+util.FormatDuration(pb.data.ETA))
	}
	if len(details) > 0 {
		result.WriteString("\n")
		result.WriteString(style.FileStyle.Render(strings.Join(details, " | ")))
	}
	return result.String()
}

func (pb *ProgressBar) renderBar(percentage float64) string {
	filledWidth := int(float64(pb.config.Width) * percentage / 100.0)
	emptyWidth := pb.config.Width - filledWidth

	filled := pb.statusStyle().Render(strings.Repeat("█", filledWidth))
	empty := style.LabelStyle.Render(strings.Repeat("░", emptyWidth))
	return fmt.Sprintf("[%s%s]", filled, empty)
}

func (pb *ProgressBar) statusStyle() lipgloss.Style {
	switch pb.data.Status {
	case "error":
		return style.ErrorStyle
	case "complete":
		return style.SuccessStyle
	default:
		return style.ActiveStyle
	}
}
