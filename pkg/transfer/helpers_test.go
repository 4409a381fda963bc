package transfer

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/rescp17/directOTA/pkg/fileInfo"
	"github.com/stretchr/testify/require"
)

// sizedFile creates a sparse file of the given size, cheap even at 3MB.
func sizedFile(tb testing.TB, name string, size int64) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(tb, err)
	require.NoError(tb, f.Truncate(size))
	require.NoError(tb, f.Close())
	return path
}

// firmwareFile writes size bytes of deterministic random content.
func firmwareFile(tb testing.TB, size int) (string, []byte) {
	tb.Helper()
	content := make([]byte, size)
	rand.New(rand.NewSource(int64(size))).Read(content)

	path := filepath.Join(tb.TempDir(), "firmware.bin")
	require.NoError(tb, os.WriteFile(path, content, 0644))
	return path, content
}

func newTestChunker(tb testing.TB, path string) *Chunker {
	tb.Helper()
	node, err := fileInfo.Stat(path)
	require.NoError(tb, err)
	chunker, err := NewChunkerFromFileNode(&node, DefaultChunkSize)
	require.NoError(tb, err)
	return chunker
}
