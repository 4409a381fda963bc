package discovery

import (
	"strconv"
	"strings"
)

const (
	// The device rejects identify messages shorter than this.
	MinMessageLength = 44
	paddingLength    = 40
	maxDatagramSize  = 1024
)

// IdentifyMessage builds the probe payload: "0 <port> <size> 0" followed by
// forty 'a' characters. The device reads tokens 1 and 2 as port and size.
func IdentifyMessage(port int, size int64) []byte {
	var b strings.Builder
	b.WriteString("0 ")
	b.WriteString(strconv.Itoa(port))
	b.WriteString(" ")
	b.WriteString(strconv.FormatInt(size, 10))
	b.WriteString(" 0")
	b.WriteString(strings.Repeat("a", paddingLength))
	return []byte(b.String())
}
