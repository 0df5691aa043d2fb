package results

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/weiihann/walkbench/bench"
)

// IOError reports a failure to write or read a results file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Compression is the on-disk encoding of a results file.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
)

// CompressionFor picks the encoding from the file extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	default:
		return None
	}
}

// WriteFile writes s to path, compressing according to its extension.
// The file is created or truncated.
func WriteFile(path string, s bench.Series) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Op: "close", Path: path, Err: cerr}
		}
	}()

	bw := bufio.NewWriter(f)

	if err := encode(bw, CompressionFor(path), s); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	if err := bw.Flush(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	return nil
}

func encode(w io.Writer, c Compression, s bench.Series) error {
	switch c {
	case Gzip:
		zw := gzip.NewWriter(w)
		if err := Write(zw, s); err != nil {
			zw.Close()

			return err
		}

		return zw.Close()

	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("zstd writer: %w", err)
		}
		if err := Write(zw, s); err != nil {
			zw.Close()

			return err
		}

		return zw.Close()

	default:
		return Write(w, s)
	}
}

// ReadFile reads a series from path, decompressing according to its
// extension.
func ReadFile(path string) (bench.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	s, err := decode(bufio.NewReader(f), CompressionFor(path))
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	return s, nil
}

func decode(r io.Reader, c Compression) (bench.Series, error) {
	switch c {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer zr.Close()

		return Read(zr)

	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer zr.Close()

		return Read(zr)

	default:
		return Read(r)
	}
}
