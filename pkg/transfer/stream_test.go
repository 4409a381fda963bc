package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listenLoopback binds a transfer listener on an ephemeral loopback port.
func listenLoopback(t *testing.T, acceptTimeout time.Duration) (*Listener, string) {
	t.Helper()
	ln, err := Listen("127.0.0.1", 0, acceptTimeout)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	port := ln.Addr().(*net.TCPAddr).Port
	return ln, net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
}

// ackingDevice behaves like the device firmware: it acknowledges every read
// with one byte and closes once it holds the whole image.
func ackingDevice(t *testing.T, addr string, size int) <-chan []byte {
	t.Helper()
	out := make(chan []byte, 1)
	go func() {
		defer close(out)
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			t.Errorf("device dial: %v", err)
			return
		}
		defer conn.Close()

		var received bytes.Buffer
		buf := make([]byte, 1024)
		for received.Len() < size {
			n, err := conn.Read(buf)
			if err != nil {
				t.Errorf("device read: %v", err)
				return
			}
			received.Write(buf[:n])
			if received.Len() >= size {
				break
			}
			if _, err := conn.Write([]byte{'O'}); err != nil {
				t.Errorf("device ack: %v", err)
				return
			}
		}
		out <- received.Bytes()
	}()
	return out
}

func TestServe_RoundTrip(t *testing.T) {
	for _, size := range []int{100000, 102400, 150001} {
		t.Run(strconv.Itoa(size), func(t *testing.T) {
			path, content := firmwareFile(t, size)
			ln, addr := listenLoopback(t, 0)
			device := ackingDevice(t, addr, size)

			var progressCalls int
			var lastSent int64
			res, err := ln.Serve(context.Background(), newTestChunker(t, path), StreamOptions{
				OnProgress: func(sent, total int64) {
					progressCalls++
					lastSent = sent
					assert.Equal(t, int64(size), total)
				},
			})
			require.NoError(t, err)

			received := <-device
			assert.Equal(t, content, received, "device must receive the image in order without loss")
			assert.Equal(t, int64(size), res.BytesSent)
			assert.Equal(t, (size+1023)/1024, res.Chunks)
			assert.Equal(t, res.Chunks, progressCalls)
			assert.Equal(t, int64(size), lastSent)
			assert.NotNil(t, res.Peer)
		})
	}
}

func TestServe_PeerClosesEarlyIsSuccess(t *testing.T) {
	path, _ := firmwareFile(t, 200000)
	ln, addr := listenLoopback(t, 0)

	go func() {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return
		}
		buf := make([]byte, 1024)
		_, _ = io.ReadFull(conn, buf)
		conn.Close()
	}()

	res, err := ln.Serve(context.Background(), newTestChunker(t, path), StreamOptions{})
	require.NoError(t, err, "a peer closing the stream ends the transfer successfully")
	assert.Equal(t, int64(1024), res.BytesSent)
	assert.Equal(t, 1, res.Chunks)
}

func TestServe_PeerResetIsSocketError(t *testing.T) {
	path, _ := firmwareFile(t, 200000)
	ln, addr := listenLoopback(t, 0)

	go func() {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return
		}
		buf := make([]byte, 1024)
		_, _ = io.ReadFull(conn, buf)
		_ = conn.(*net.TCPConn).SetLinger(0)
		conn.Close()
	}()

	_, err := ln.Serve(context.Background(), newTestChunker(t, path), StreamOptions{})
	assert.ErrorIs(t, err, ErrTransferSocket)
}

func TestServe_AcceptTimeout(t *testing.T) {
	path, _ := firmwareFile(t, 2048)
	ln, _ := listenLoopback(t, 100*time.Millisecond)
	chunker := newTestChunker(t, path)

	_, err := ln.Serve(context.Background(), chunker, StreamOptions{})
	assert.ErrorIs(t, err, ErrTransferSocket)

	_, err = chunker.Next()
	assert.ErrorIs(t, err, os.ErrClosed, "chunker must be closed when accept fails")
}

func TestServe_CancelWhileAccepting(t *testing.T) {
	path, _ := firmwareFile(t, 2048)
	ln, _ := listenLoopback(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := ln.Serve(ctx, newTestChunker(t, path), StreamOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStream_IOTimeout(t *testing.T) {
	path, _ := firmwareFile(t, 4096)
	ln, addr := listenLoopback(t, 0)

	done := make(chan struct{})
	defer close(done)
	go func() {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1024)
		_, _ = io.ReadFull(conn, buf)
		<-done // never acknowledge
	}()

	start := time.Now()
	_, err := ln.Serve(context.Background(), newTestChunker(t, path), StreamOptions{IOTimeout: 150 * time.Millisecond})
	assert.ErrorIs(t, err, ErrTransferSocket)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStream_CancelIsNotOutlivedByIOTimeout(t *testing.T) {
	path, _ := firmwareFile(t, 8192)
	ln, addr := listenLoopback(t, 0)

	go func() {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1024)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
			if _, err := conn.Write([]byte{'O'}); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	res, err := ln.Serve(ctx, newTestChunker(t, path), StreamOptions{
		IOTimeout: time.Minute,
		OnProgress: func(sent, total int64) {
			cancel()
		},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(1024), res.BytesSent, "no chunk goes out after cancellation")
	assert.Less(t, time.Since(start), 5*time.Second)
}

// trackingConn records whether the stream released its connection.
type trackingConn struct {
	net.Conn
	mu     sync.Mutex
	closed bool
}

func (c *trackingConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.Conn.Close()
}

func (c *trackingConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestStream_SendFailureReleasesResources(t *testing.T) {
	path, _ := firmwareFile(t, 4096)
	chunker := newTestChunker(t, path)

	local, remote := net.Pipe()
	conn := &trackingConn{Conn: local}

	go func() {
		buf := make([]byte, 1024)
		_, _ = io.ReadFull(remote, buf)
		_, _ = remote.Write([]byte{'O'})
		remote.Close()
	}()

	res, err := Stream(context.Background(), conn, chunker, StreamOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransferSocket)
	assert.True(t, errors.Is(err, io.ErrClosedPipe))
	assert.Equal(t, int64(1024), res.BytesSent)

	assert.True(t, conn.isClosed(), "connection must be closed after a send failure")
	_, err = chunker.Next()
	assert.ErrorIs(t, err, os.ErrClosed, "firmware file must be closed after a send failure")
}

func TestStream_FileReadFailure(t *testing.T) {
	path, _ := firmwareFile(t, 4096)
	chunker := newTestChunker(t, path)
	require.NoError(t, chunker.file.Close())

	local, remote := net.Pipe()
	defer remote.Close()
	conn := &trackingConn{Conn: local}

	_, err := Stream(context.Background(), conn, chunker, StreamOptions{})
	assert.ErrorIs(t, err, ErrUnexpectedIO)
	assert.True(t, conn.isClosed())
}
