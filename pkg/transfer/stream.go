package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"
)

// The device answers every chunk with at most this many bytes.
const ackBufferSize = 1024

// ProgressFunc is called after every non-empty chunk write.
type ProgressFunc func(sent, total int64)

type StreamOptions struct {
	// IOTimeout bounds each write and each acknowledgement read. Zero waits forever.
	IOTimeout  time.Duration
	OnProgress ProgressFunc
}

// Result summarises a finished stream.
type Result struct {
	Peer      net.Addr
	BytesSent int64
	Chunks    int
}

// Stream runs the chunk loop: send a chunk, read the next one from the file,
// then block until the peer sends anything back. The peer closing its side
// ends the transfer successfully, whether or not the whole file went out.
// Stream owns conn and chunker and closes both.
func Stream(ctx context.Context, conn net.Conn, chunker *Chunker, opts StreamOptions) (res Result, err error) {
	res.Peer = conn.RemoteAddr()
	defer func() {
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			slog.Debug("failed to close transfer connection", "error", cerr)
		}
		if cerr := chunker.Close(); cerr != nil {
			slog.Debug("failed to close firmware file", "error", cerr)
		}
	}()

	// deadlineMu keeps a per-chunk deadline from overwriting the expired one
	// set on cancellation.
	var deadlineMu sync.Mutex
	stop := context.AfterFunc(ctx, func() {
		deadlineMu.Lock()
		defer deadlineMu.Unlock()
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()
	extendDeadline := func() error {
		deadlineMu.Lock()
		defer deadlineMu.Unlock()
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := conn.SetDeadline(time.Now().Add(opts.IOTimeout)); err != nil {
			return fmt.Errorf("%w: %w", ErrTransferSocket, err)
		}
		return nil
	}

	slog.Info("[DirectOta] starting OTA", "peer", res.Peer, "size", chunker.TotalSize())

	chunk, err := chunker.Next()
	if err != nil {
		return res, err
	}

	ack := make([]byte, ackBufferSize)
	for {
		if opts.IOTimeout > 0 {
			if err := extendDeadline(); err != nil {
				return res, err
			}
		} else if err := ctx.Err(); err != nil {
			return res, err
		}

		n, err := conn.Write(chunk.Data)
		res.BytesSent += int64(n)
		if err != nil {
			return res, socketError(ctx, fmt.Sprintf("send chunk %d", chunk.SequenceNo), err)
		}
		if len(chunk.Data) > 0 {
			res.Chunks++
			if opts.OnProgress != nil {
				opts.OnProgress(res.BytesSent, chunker.TotalSize())
			}
		}

		chunk, err = chunker.Next()
		if err != nil {
			return res, err
		}

		n, err = conn.Read(ack)
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			slog.Info("[DirectOta] OTA done", "bytes_sent", res.BytesSent, "chunks", res.Chunks)
			return res, nil
		}
		if err != nil {
			return res, socketError(ctx, "read ack", err)
		}
	}
}

func socketError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s: %w", ErrTransferSocket, op, err)
}
