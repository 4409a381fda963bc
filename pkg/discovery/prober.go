package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/rescp17/directOTA/pkg/transfer"
)

// Prober performs the single-shot UDP identify handshake.
type Prober struct {
	Timeout time.Duration
	TTL     int
}

// NewProber takes the discovery settings from cfg.
func NewProber(cfg *transfer.Config) *Prober {
	return &Prober{
		Timeout: cfg.DiscoveryTimeout,
		TTL:     cfg.ProbeTTL,
	}
}

var _ Adapter = (*Prober)(nil)

// Identify sends one identify datagram to address:port and waits up to
// Timeout for a reply from any sender. There is no retry.
func (p *Prober) Identify(ctx context.Context, address string, port int, size int64) (*Reply, error) {
	raddr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", transfer.ErrDiscoverySend, address, err)
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open socket: %w", transfer.ErrDiscoverySend, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("failed to close identify socket", "error", err)
		}
	}()

	if p.TTL > 0 {
		if err := ipv4.NewConn(conn).SetTTL(p.TTL); err != nil {
			return nil, fmt.Errorf("%w: set ttl: %w", transfer.ErrDiscoverySend, err)
		}
	}

	start := time.Now()
	if err := conn.SetReadDeadline(start.Add(p.Timeout)); err != nil {
		return nil, fmt.Errorf("%w: %w", transfer.ErrDiscoverySend, err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	msg := IdentifyMessage(port, size)
	slog.Debug("sending identify message", "to", raddr, "message", string(msg))
	if _, err := conn.WriteToUDP(msg, raddr); err != nil {
		return nil, fmt.Errorf("%w: send: %w", transfer.ErrDiscoverySend, err)
	}

	buf := make([]byte, maxDatagramSize)
	n, from, err := conn.ReadFromUDP(buf)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, fmt.Errorf("%w: no reply from %s within %s", transfer.ErrDiscoveryTimeout, raddr, p.Timeout)
		}
		return nil, fmt.Errorf("%w: receive: %w", transfer.ErrDiscoverySend, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty reply from %s", transfer.ErrDiscoveryEmptyReply, from)
	}

	reply := &Reply{
		From:    from,
		Payload: append([]byte(nil), buf[:n]...),
		RTT:     time.Since(start),
	}
	slog.Info("device got the request and is ready to OTA", "device", from, "rtt", reply.RTT)
	return reply, nil
}
