package transfer

import (
	"fmt"
	"net"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/rescp17/directOTA/pkg/fileInfo"
)

const (
	FileMinSize          = 100 * 1000 // 100kb
	FileMaxSize          = 3 * 1000000 // 3MB
	FileAllowedExtension = ".bin"
)

// ValidPorts are the OTA ports the device firmware listens on.
var ValidPorts = []int{3232, 8266}

// Only the shape is checked: 999.999.999.999 is accepted.
var ipPattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// Request is a single firmware push to a single device.
type Request struct {
	Address string
	Port    int
	BinPath string
	// Disabled is the operator kill-switch; a disabled request is never run.
	Disabled bool
}

// Target returns the device address as host:port.
func (r Request) Target() string {
	return net.JoinHostPort(r.Address, strconv.Itoa(r.Port))
}

// Validate checks the request preconditions in order and stops at the first
// failure. The image is only stat'ed, never read.
func (r Request) Validate() (fileInfo.FileNode, error) {
	node, err := fileInfo.Stat(r.BinPath)
	if err != nil {
		return fileInfo.FileNode{}, fmt.Errorf("%w: %w", ErrFileSize, err)
	}
	if node.Size < FileMinSize || node.Size > FileMaxSize {
		return fileInfo.FileNode{}, fmt.Errorf("%w: %d bytes, allowed %d-%d",
			ErrFileSize, node.Size, FileMinSize, FileMaxSize)
	}

	if !strings.HasSuffix(node.Name, FileAllowedExtension) {
		return fileInfo.FileNode{}, fmt.Errorf("%w: %s", ErrExtension, node.Name)
	}

	if !ipPattern.MatchString(r.Address) {
		return fileInfo.FileNode{}, fmt.Errorf("%w: %q", ErrAddressFormat, r.Address)
	}

	if !slices.Contains(ValidPorts, r.Port) {
		return fileInfo.FileNode{}, fmt.Errorf("%w, received: %d, valid values: %v", ErrPort, r.Port, ValidPorts)
	}

	return node, nil
}
