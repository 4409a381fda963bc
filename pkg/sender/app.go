package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	appevents "github.com/rescp17/directOTA/internal/app_events"
	"github.com/rescp17/directOTA/internal/app_events/sender"
	"github.com/rescp17/directOTA/internal/util"
	"github.com/rescp17/directOTA/pkg/concurrency"
	"github.com/rescp17/directOTA/pkg/discovery"
	"github.com/rescp17/directOTA/pkg/fileInfo"
	"github.com/rescp17/directOTA/pkg/transfer"
)

// App sequences one OTA session: validate, identify, settle, transfer.
type App struct {
	serviceID  string
	guard      *concurrency.ConcurrencyGuard
	config     *transfer.Config
	prober     discovery.Adapter
	uiMessages chan appevents.AppUIMessage // App -> UI
	logger     *slog.Logger
}

// Report describes a completed session.
type Report struct {
	SessionID string
	Device    string
	// RespondedFrom is the address the identify reply came from.
	RespondedFrom net.Addr
	Image         fileInfo.FileNode
	BytesSent     int64
	Chunks        int
	Duration      time.Duration
}

// NewApp creates an OTA application. A nil cfg uses transfer.DefaultConfig and
// a nil prober uses the UDP identify prober.
func NewApp(cfg *transfer.Config, prober discovery.Adapter) (*App, error) {
	if cfg == nil {
		cfg = transfer.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if prober == nil {
		prober = discovery.NewProber(cfg)
	}
	serviceID := uuid.New().String()
	return &App{
		serviceID:  serviceID,
		guard:      concurrency.NewConcurrencyGuard(),
		config:     cfg,
		prober:     prober,
		uiMessages: make(chan appevents.AppUIMessage, cfg.EventBufferSize),
		logger:     slog.Default().With("service_id", serviceID),
	}, nil
}

// UIMessages returns the channel for the UI to listen on for updates.
// Every Run ends with exactly one AppErrorMsg, TransferCompleteMsg or
// TransferSkippedMsg. Run never waits on the reader; if the channel is not
// drained, older messages are discarded.
func (a *App) UIMessages() <-chan appevents.AppUIMessage {
	return a.uiMessages
}

// Run pushes the firmware described by req. Every failure, including a panic
// inside a phase, comes back as an error; nothing escapes as a crash.
func (a *App) Run(ctx context.Context, req transfer.Request) (*Report, error) {
	if req.Disabled {
		a.logger.Info("OTA disabled by configuration, skipping", "device", req.Target())
		a.send(sender.TransferSkippedMsg{Reason: "disable_script is set"})
		return nil, transfer.ErrDisabled
	}

	var report *Report
	err := a.guard.Execute(func() error {
		var err error
		report, err = a.runSession(ctx, req)
		return err
	})
	if errors.Is(err, concurrency.ErrBusy) {
		a.sendAndLogError("start", err)
	}
	return report, err
}

func (a *App) runSession(ctx context.Context, req transfer.Request) (report *Report, err error) {
	session := transfer.NewSession(a.serviceID, req)
	logger := a.logger.With("session_id", session.SessionID, "device", session.Device)
	start := time.Now()

	phase := "validate"
	defer func() {
		if r := recover(); r != nil {
			logger.Error("recovered from panic", "phase", phase, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: panic during %s: %v", transfer.ErrInternal, phase, r)
		}
		if err == nil {
			return
		}
		report = nil
		if terr := session.Transition(transfer.StateFailed); terr != nil {
			logger.Debug("session already terminal", "error", terr)
		}
		transfer.LogError(logger, phase, err)
		a.send(appevents.AppErrorMsg{Phase: phase, Err: err})
	}()

	node, err := req.Validate()
	if err != nil {
		return nil, err
	}
	if err := a.advance(session, transfer.StateValidated,
		fmt.Sprintf("Firmware %s (%s) accepted", node.Name, util.FormatSize(node.Size))); err != nil {
		return nil, err
	}
	if err := node.Sniff(); err != nil {
		logger.Warn("could not fingerprint firmware", "error", err)
	} else {
		logger.Info("firmware image", "name", node.Name, "size", node.Size, "mime", node.MimeType, "sha256", node.Checksum)
	}

	phase = "listen"
	ln, err := transfer.Listen(a.config.ListenHost, req.Port, a.config.AcceptTimeout)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := ln.Close(); cerr != nil {
			logger.Debug("failed to close transfer listener", "error", cerr)
		}
	}()

	phase = "discovery"
	a.send(sender.StatusUpdateMsg{State: session.State.String(), Message: "Sending identify request to " + session.Device})
	reply, err := a.prober.Identify(ctx, req.Address, req.Port, node.Size)
	if err != nil {
		return nil, err
	}
	a.send(sender.DeviceIdentifiedMsg{Device: reply.From, RTT: reply.RTT})
	if err := a.advance(session, transfer.StateIdentified,
		fmt.Sprintf("Device %s got the request and is ready to OTA", reply.From)); err != nil {
		return nil, err
	}

	phase = "settle"
	if err := sleepContext(ctx, a.config.SettleDelay); err != nil {
		return nil, err
	}

	phase = "transfer"
	if node.Checksum != "" {
		ok, err := node.VerifySHA256(node.Checksum)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", transfer.ErrUnexpectedIO, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s changed since validation", transfer.ErrUnexpectedIO, node.Name)
		}
	}
	if err := a.advance(session, transfer.StateTransferring, "Waiting for the device to connect"); err != nil {
		return nil, err
	}
	chunker, err := transfer.NewChunkerFromFileNode(&node, a.config.ChunkSize)
	if err != nil {
		return nil, err
	}
	transferStart := time.Now()
	res, err := ln.Serve(ctx, chunker, transfer.StreamOptions{
		IOTimeout: a.config.IOTimeout,
		OnProgress: func(sent, total int64) {
			a.trySend(progressMsg(sent, total, time.Since(transferStart)))
		},
	})
	if err != nil {
		return nil, err
	}
	if res.BytesSent < node.Size {
		logger.Warn("device closed the connection before the whole image was sent",
			"bytes_sent", res.BytesSent, "size", node.Size)
	}

	if err := a.advance(session, transfer.StateDone, "OTA done"); err != nil {
		return nil, err
	}
	report = &Report{
		SessionID:     session.SessionID,
		Device:        session.Device,
		RespondedFrom: reply.From,
		Image:         node,
		BytesSent:     res.BytesSent,
		Chunks:        res.Chunks,
		Duration:      time.Since(start),
	}
	logger.Info("OTA complete", "peer", res.Peer, "bytes_sent", res.BytesSent, "chunks", res.Chunks, "duration", report.Duration)
	a.send(sender.TransferCompleteMsg{BytesSent: res.BytesSent, Chunks: res.Chunks, Duration: report.Duration})
	return report, nil
}

// advance moves the session forward and tells the UI about it.
func (a *App) advance(session *transfer.TransferSession, next transfer.State, message string) error {
	if err := session.Transition(next); err != nil {
		return err
	}
	a.send(sender.StatusUpdateMsg{State: next.String(), Message: message})
	return nil
}

// send never blocks: when nobody drains UIMessages the oldest queued
// message is dropped to make room.
func (a *App) send(msg appevents.AppUIMessage) {
	for {
		select {
		case a.uiMessages <- msg:
			return
		default:
		}
		select {
		case <-a.uiMessages:
		default:
		}
	}
}

// trySend drops the message when the UI is behind. Half of the buffer stays
// free so status and terminal messages never wait on stale progress.
func (a *App) trySend(msg appevents.AppUIMessage) {
	if len(a.uiMessages) >= cap(a.uiMessages)/2 {
		return
	}
	select {
	case a.uiMessages <- msg:
	default:
	}
}

// sendAndLogError is a helper function to both log an error and send it to the UI.
func (a *App) sendAndLogError(phase string, err error) {
	a.logger.Error("OTA failed", "phase", phase, "error", err)
	a.send(appevents.AppErrorMsg{Phase: phase, Err: err})
}

func progressMsg(sent, total int64, elapsed time.Duration) sender.ProgressUpdateMsg {
	msg := sender.ProgressUpdateMsg{TotalBytes: total, TransferredBytes: sent}
	if total > 0 {
		msg.OverallProgress = float64(sent) / float64(total) * 100
	}
	if secs := elapsed.Seconds(); secs > 0 {
		msg.TransferRate = float64(sent) / secs
		if msg.TransferRate > 0 && sent < total {
			msg.ETA = time.Duration(float64(total-sent) / msg.TransferRate * float64(time.Second))
		}
	}
	return msg
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
