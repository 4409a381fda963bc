package fileInfo

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

var ErrIsDir = errors.New("path is a directory")

// FileNode describes a firmware image on disk.
type FileNode struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	Path     string `json:"-"`
}

// Stat builds a FileNode from file metadata only. The content is not read,
// so MimeType and Checksum stay empty until Sniff is called.
func Stat(path string) (FileNode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileNode{}, err
	}
	return FileNode{
		Name: filepath.Base(path),
		Size: info.Size(),
		Path: path,
	}, nil
}

// CreateNode stats the image and fills in its MIME type and checksum.
func CreateNode(path string) (FileNode, error) {
	node, err := Stat(path)
	if err != nil {
		return FileNode{}, err
	}
	if err := node.Sniff(); err != nil {
		return FileNode{}, err
	}
	return node, nil
}

// Sniff reads the image to detect its MIME type and compute its SHA-256.
func (n *FileNode) Sniff() error {
	info, err := os.Stat(n.Path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return ErrIsDir
	}

	mime, err := mimetype.DetectFile(n.Path)
	if err != nil {
		n.MimeType = "application/octet-stream"
	} else {
		n.MimeType = mime.String()
	}

	if _, err := n.CalcChecksum(); err != nil {
		return err
	}
	return nil
}
