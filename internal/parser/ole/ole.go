// Package ole locates metafile streams inside OLE2 compound documents.
package ole

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"

	"github.com/roboco-io/koimport/internal/parser"
)

// ErrNoMetafile is returned when no stream of the container holds a metafile.
var ErrNoMetafile = errors.New("no metafile stream found")

// Stream is a stream entry of a compound document.
type Stream struct {
	Path string // "/"로 구분된 전체 경로
	Size int64
}

// Container is an opened compound document.
type Container struct {
	file *os.File
	doc  *mscfb.Reader
}

// Open opens the compound document at path.
func Open(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("OLE2 파일을 열 수 없습니다: %w", err)
	}
	c, err := newContainer(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.file = f
	return c, nil
}

// New reads a compound document from r.
func New(r io.ReaderAt) (*Container, error) {
	return newContainer(r)
}

func newContainer(r io.ReaderAt) (*Container, error) {
	doc, err := mscfb.New(r)
	if err != nil {
		return nil, fmt.Errorf("OLE2 문서 파싱 실패: %w", err)
	}
	return &Container{doc: doc}, nil
}

// Close releases the underlying file, if any.
func (c *Container) Close() error {
	if c.file != nil {
		return c.file.Close()
	}
	return nil
}

// Streams lists the non-empty streams of the document.
func (c *Container) Streams() []Stream {
	var out []Stream
	for _, entry := range c.doc.File {
		if entry.Size <= 0 {
			continue
		}
		out = append(out, Stream{Path: entryPath(entry), Size: entry.Size})
	}
	return out
}

// ReadStream returns the contents of the named stream. The name matches
// either the full path or the bare stream name. An empty name selects the
// first stream that starts with a metafile header.
func (c *Container) ReadStream(name string) ([]byte, error) {
	if name == "" {
		return c.firstMetafile()
	}

	name = strings.TrimPrefix(name, "/")
	for _, entry := range c.doc.File {
		if entry.Name == name || entryPath(entry) == name {
			return io.ReadAll(entry)
		}
	}
	return nil, fmt.Errorf("스트림을 찾을 수 없습니다: %s", name)
}

func (c *Container) firstMetafile() ([]byte, error) {
	for _, entry := range c.doc.File {
		if entry.Size < 4 {
			continue
		}
		data, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("스트림 %s 읽기 실패: %w", entryPath(entry), err)
		}
		if isMetafile(data) {
			return data, nil
		}
	}
	return nil, ErrNoMetafile
}

// ReadStream opens the compound document at path and reads one stream.
func ReadStream(path, name string) ([]byte, error) {
	c, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.ReadStream(name)
}

func isMetafile(data []byte) bool {
	f, err := parser.DetectFormatFromReader(bytes.NewReader(data))
	return err == nil && f == parser.FormatWMF
}

func entryPath(entry *mscfb.File) string {
	return strings.Join(append(append([]string{}, entry.Path...), entry.Name), "/")
}
