package history

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/snappy"

	"github.com/dd0wney/pipeswarm/pkg/simulation"
)

// Writer appends turn records to a history file
type Writer struct {
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
	closed bool

	// Statistics
	frames            int
	bytesUncompressed uint64
	bytesCompressed   uint64
}

// Stats describes what a Writer has written
type Stats struct {
	Frames            int
	BytesUncompressed uint64
	BytesCompressed   uint64
}

// Create truncates or creates path and writes the header for runID
func Create(path, runID string) (*Writer, error) {
	if len(runID) > 0xffff {
		return nil, fmt.Errorf("run id too long: %d bytes", len(runID))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}

	w := &Writer{file: file, writer: bufio.NewWriter(file)}
	if err := w.writeHeader(runID); err != nil {
		_ = file.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader(runID string) error {
	buf := make([]byte, headerFixed, headerFixed+len(runID))
	binary.BigEndian.PutUint32(buf[0:4], Magic)
	binary.BigEndian.PutUint16(buf[4:6], Version)
	binary.BigEndian.PutUint16(buf[6:8], uint16(len(runID)))
	buf = append(buf, runID...)
	if _, err := w.writer.Write(buf); err != nil {
		return err
	}
	return w.writer.Flush()
}

// Append compresses rec and writes it as one frame
func (w *Writer) Append(rec simulation.TurnRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode turn %d: %w", rec.Turn, err)
	}
	compressed := snappy.Encode(nil, data)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	head := make([]byte, 8)
	binary.BigEndian.PutUint32(head[0:4], uint32(rec.Turn))
	binary.BigEndian.PutUint32(head[4:8], uint32(len(compressed)))
	if _, err := w.writer.Write(head); err != nil {
		return err
	}
	if _, err := w.writer.Write(compressed); err != nil {
		return err
	}
	if err := binary.Write(w.writer, binary.BigEndian, crc32.ChecksumIEEE(compressed)); err != nil {
		return err
	}

	w.frames++
	w.bytesUncompressed += uint64(len(data))
	w.bytesCompressed += uint64(len(compressed))
	return nil
}

// AppendAll writes every record in order
func (w *Writer) AppendAll(records []simulation.TurnRecord) error {
	for _, rec := range records {
		if err := w.Append(rec); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns write statistics
func (w *Writer) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{Frames: w.frames, BytesUncompressed: w.bytesUncompressed, BytesCompressed: w.bytesCompressed}
}

// Close flushes, syncs and closes the file
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.writer.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// WriteFile writes a whole result's history to path
func WriteFile(path string, res *simulation.Result) (Stats, error) {
	w, err := Create(path, res.RunID)
	if err != nil {
		return Stats{}, err
	}
	if err := w.AppendAll(res.History); err != nil {
		_ = w.Close()
		return Stats{}, err
	}
	return w.Stats(), w.Close()
}
