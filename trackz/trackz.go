// Package trackz opens track files for reading and writing, gzipped or not.
package trackz

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Stdio is the path naming stdin or stdout.
const Stdio = "-"

var gzipMagic = []byte{0x1f, 0x8b}

type GZFileWriter struct {
	f      *os.File
	gzw    *gzip.Writer
	locked bool
	closed bool
}

type WriterConfig struct {
	CompressionLevel int
	Flag             int
	FilePerm         os.FileMode
	DirPerm          os.FileMode
}

func DefaultWriterConfig() *WriterConfig {
	return &WriterConfig{
		CompressionLevel: gzip.BestCompression,
		Flag:             os.O_WRONLY | os.O_TRUNC | os.O_CREATE,
		FilePerm:         0660,
		DirPerm:          0770,
	}
}

func NewGZFileWriter(path string, config *WriterConfig) (*GZFileWriter, error) {
	if config == nil {
		config = DefaultWriterConfig()
	}
	f, err := openFile(path, config)
	if err != nil {
		return nil, err
	}
	gzw, err := gzip.NewWriterLevel(f, config.CompressionLevel)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &GZFileWriter{f: f, gzw: gzw}, nil
}

func openFile(path string, config *WriterConfig) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), config.DirPerm); err != nil {
		return nil, err
	}
	return os.OpenFile(path, config.Flag, config.FilePerm)
}

func (g *GZFileWriter) Write(p []byte) (int, error) {
	g.lock()
	return g.gzw.Write(p)
}

// lock takes an exclusive lock on the file, released when the file is closed.
func (g *GZFileWriter) lock() {
	if g.locked || g.closed || g.f == nil {
		return
	}
	_ = syscall.Flock(int(g.f.Fd()), syscall.LOCK_EX)
	g.locked = true
}

func (g *GZFileWriter) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	if err := g.gzw.Close(); err != nil {
		_ = g.f.Close()
		return err
	}
	return g.f.Close()
}

func (g *GZFileWriter) Path() string {
	return g.f.Name()
}

// Reader reads a track file, decompressing it when it starts with the gzip magic.
type Reader struct {
	f   *os.File
	gzr *gzip.Reader
	r   io.Reader
}

// Open opens path for reading. Stdio reads stdin.
func Open(path string) (*Reader, error) {
	f := os.Stdin
	if path != Stdio {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
	}
	rd := &Reader{f: f}
	br := bufio.NewReader(f)
	magic, _ := br.Peek(len(gzipMagic))
	if len(magic) == len(gzipMagic) && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gzr, err := gzip.NewReader(br)
		if err != nil {
			rd.closeFile()
			return nil, err
		}
		rd.gzr = gzr
		rd.r = gzr
		return rd, nil
	}
	rd.r = br
	return rd, nil
}

// Read satisfies the io.Reader interface.
func (r *Reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

func (r *Reader) Compressed() bool { return r.gzr != nil }

func (r *Reader) closeFile() {
	if r.f != os.Stdin {
		_ = r.f.Close()
	}
}

// Close satisfies the io.Closer interface. It never closes stdin.
func (r *Reader) Close() error {
	defer r.closeFile()
	if r.gzr != nil {
		return r.gzr.Close()
	}
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Create opens path for writing, truncating it. Paths ending in .gz are gzipped,
// Stdio writes stdout.
func Create(path string, config *WriterConfig) (io.WriteCloser, error) {
	if path == Stdio {
		return nopWriteCloser{os.Stdout}, nil
	}
	if config == nil {
		config = DefaultWriterConfig()
	}
	if strings.HasSuffix(path, ".gz") {
		return NewGZFileWriter(path, config)
	}
	return openFile(path, config)
}
