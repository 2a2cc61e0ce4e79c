// Package output writes finished cards to disk as numbered PNG files.
package output

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Prefix and Ext form card file names: feedback_card_<n>.png.
const (
	Prefix = "feedback_card_"
	Ext    = ".png"
)

// ErrInvalidDir is returned when the output directory is empty or not a directory.
var ErrInvalidDir = errors.New("invalid output directory")

// Writer numbers cards 1, 2, 3 ... in the order they are successfully written.
// A failed write leaves no file behind and does not consume a number.
// Writer is not safe for concurrent use.
type Writer struct {
	dir     string
	permF   os.FileMode
	bufSize int
	encoder png.Encoder
	next    int
	logger  *zap.Logger
}

// New creates dir if needed and returns a Writer numbering from 1.
func New(dir string, logger *zap.Logger) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrInvalidDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDir, err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDir, dir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		dir:     dir,
		permF:   0o644,
		bufSize: 64 * 1024,
		encoder: png.Encoder{CompressionLevel: png.BestSpeed},
		next:    1,
		logger:  logger,
	}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Written returns how many cards have been written.
func (w *Writer) Written() int { return w.next - 1 }

// Name returns the file name of the n-th card.
func Name(n int) string {
	return fmt.Sprintf("%s%d%s", Prefix, n, Ext)
}

// Write encodes img as PNG under the next number and returns its path.
func (w *Writer) Write(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if img == nil {
		return "", errors.New("nil image")
	}
	dest := filepath.Join(w.dir, Name(w.next))
	if err := w.writeAtomic(dest, img); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(dest), err)
	}
	w.next++
	w.logger.Debug("card written", zap.String("path", dest))
	return dest, nil
}

func (w *Writer) writeAtomic(dest string, img image.Image) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, w.permF)

	bw := bufio.NewWriterSize(tmp, w.bufSize)
	if err := w.encoder.Encode(bw, img); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = syncDir(dir)
	return nil
}

// syncDir fsyncs the directory so the rename survives a crash. Best effort.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
