package transfer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rescp17/directOTA/pkg/fileInfo"
)

// Chunk is one TCP write worth of firmware. An empty Data marks end of file.
type Chunk struct {
	SequenceNo uint32
	Offset     int64
	Data       []byte
}

// Chunker reads a firmware image sequentially in fixed-size slices.
type Chunker struct {
	file          *os.File
	chunkSize     int
	currentSeq    uint32
	totalByteSize int64
	bytesRead     int64
	buffer        []byte
}

var ErrInvalidChunkSize = errors.New("invalid chunk size")

func NewChunkerFromFileNode(node *fileInfo.FileNode, chunkSize int) (*Chunker, error) {
	if chunkSize <= 0 || chunkSize > MaxChunkSize {
		return nil, fmt.Errorf("%w: must be between 1 and %d", ErrInvalidChunkSize, MaxChunkSize)
	}
	file, err := os.Open(node.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedIO, err)
	}

	return &Chunker{
		file:          file,
		chunkSize:     chunkSize,
		totalByteSize: node.Size,
		buffer:        make([]byte, chunkSize),
	}, nil
}

// Next returns the next slice of the file. Once the file is exhausted it keeps
// returning empty chunks; read failures wrap ErrUnexpectedIO.
func (c *Chunker) Next() (*Chunk, error) {
	n, err := io.ReadFull(c.file, c.buffer)
	switch {
	case err == nil, errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
	default:
		return nil, fmt.Errorf("%w: at offset %d: %w", ErrUnexpectedIO, c.bytesRead, err)
	}

	offset := c.bytesRead
	if n == 0 {
		return &Chunk{SequenceNo: c.currentSeq, Offset: offset, Data: []byte{}}, nil
	}

	c.bytesRead += int64(n)
	c.currentSeq++

	data := make([]byte, n)
	copy(data, c.buffer[:n])

	return &Chunk{
		SequenceNo: c.currentSeq,
		Offset:     offset,
		Data:       data,
	}, nil
}

// TotalSize is the image size recorded when the chunker was created.
func (c *Chunker) TotalSize() int64 {
	return c.totalByteSize
}

func (c *Chunker) Close() error {
	return c.file.Close()
}
