package transfer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Listener is the TCP endpoint the device connects back to. It must be
// bound before the identify datagram goes out, otherwise a fast device can
// connect before anyone is listening.
type Listener struct {
	ln            *net.TCPListener
	acceptTimeout time.Duration
}

// Listen binds the transfer endpoint on host:port.
func Listen(host string, port int, acceptTimeout time.Duration) (*Listener, error) {
	addr, err := net.ResolveTCPAddr("tcp4", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("%w: resolve listen address: %w", ErrTransferSocket, err)
	}
	ln, err := net.ListenTCP("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: listen: %w", ErrTransferSocket, err)
	}
	return &Listener{ln: ln, acceptTimeout: acceptTimeout}, nil
}

func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

func (l *Listener) Close() error {
	return l.ln.Close()
}

// Serve accepts exactly one connection and streams the firmware over it.
// Serve owns chunker and closes it on every path.
func (l *Listener) Serve(ctx context.Context, chunker *Chunker, opts StreamOptions) (Result, error) {
	conn, err := l.accept(ctx)
	if err != nil {
		if cerr := chunker.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return Result{}, err
	}
	return Stream(ctx, conn, chunker, opts)
}

func (l *Listener) accept(ctx context.Context) (net.Conn, error) {
	if l.acceptTimeout > 0 {
		if err := l.ln.SetDeadline(time.Now().Add(l.acceptTimeout)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransferSocket, err)
		}
	}

	stop := context.AfterFunc(ctx, func() {
		_ = l.ln.SetDeadline(time.Now())
	})
	defer stop()

	conn, err := l.ln.AcceptTCP()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: accept: %w", ErrTransferSocket, err)
	}
	return conn, nil
}
