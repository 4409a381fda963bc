package discovery

import (
	"context"
	"net"
	"time"
)

// Reply is the device's answer to an identify probe. Its content carries no
// meaning: any non-empty datagram is an acknowledgement.
type Reply struct {
	From    *net.UDPAddr
	Payload []byte
	RTT     time.Duration
}

// Adapter tells a device that a firmware image of size bytes is waiting on port.
type Adapter interface {
	Identify(ctx context.Context, address string, port int, size int64) (*Reply, error)
}
