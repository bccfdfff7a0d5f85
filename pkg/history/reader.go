package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"

	"github.com/dd0wney/pipeswarm/pkg/simulation"
)

type frame struct {
	turn   int
	offset int64 // start of compressed data
	length int
	sum    uint32
}

// Reader gives random access to a history file through a read-only memory
// mapping. Frames are indexed on Open and decoded on demand.
type Reader struct {
	mmap   *mmap.ReaderAt
	runID  string
	frames []frame
}

// Open maps path and indexes its frames. Framing errors are reported here;
// checksum and decode errors surface when a record is read.
func Open(path string) (*Reader, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	r := &Reader{mmap: ra}
	if err := r.index(); err != nil {
		_ = ra.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) index() error {
	size := int64(r.mmap.Len())
	head := make([]byte, headerFixed)
	if _, err := r.mmap.ReadAt(head, 0); err != nil {
		return fmt.Errorf("%w: short header", ErrBadMagic)
	}
	if binary.BigEndian.Uint32(head[0:4]) != Magic {
		return ErrBadMagic
	}
	if v := binary.BigEndian.Uint16(head[4:6]); v != Version {
		return fmt.Errorf("unsupported history version %d", v)
	}
	idLen := int(binary.BigEndian.Uint16(head[6:8]))
	id := make([]byte, idLen)
	if _, err := r.mmap.ReadAt(id, headerFixed); err != nil {
		return fmt.Errorf("%w: short run id", ErrCorrupt)
	}
	r.runID = string(id)

	offset := int64(headerFixed + idLen)
	buf := make([]byte, 8)
	for offset < size {
		i := len(r.frames)
		if size-offset < frameFixed {
			return &FrameError{Index: i, Offset: offset, Cause: fmt.Errorf("truncated frame header")}
		}
		if _, err := r.mmap.ReadAt(buf, offset); err != nil {
			return &FrameError{Index: i, Offset: offset, Cause: err}
		}
		f := frame{
			turn:   int(binary.BigEndian.Uint32(buf[0:4])),
			offset: offset + 8,
			length: int(binary.BigEndian.Uint32(buf[4:8])),
		}
		if f.length > maxFrame || f.offset+int64(f.length)+4 > size {
			return &FrameError{Index: i, Offset: offset, Cause: fmt.Errorf("frame length %d out of bounds", f.length)}
		}
		sum := make([]byte, 4)
		if _, err := r.mmap.ReadAt(sum, f.offset+int64(f.length)); err != nil {
			return &FrameError{Index: i, Offset: offset, Cause: err}
		}
		f.sum = binary.BigEndian.Uint32(sum)
		r.frames = append(r.frames, f)
		offset = f.offset + int64(f.length) + 4
	}
	return nil
}

// RunID returns the run id stored in the header
func (r *Reader) RunID() string { return r.runID }

// Len returns the number of records
func (r *Reader) Len() int { return len(r.frames) }

// Turns returns the turn number of every frame without decoding them
func (r *Reader) Turns() []int {
	out := make([]int, len(r.frames))
	for i, f := range r.frames {
		out[i] = f.turn
	}
	return out
}

// Record decodes record i
func (r *Reader) Record(i int) (simulation.TurnRecord, error) {
	var rec simulation.TurnRecord
	if r.mmap == nil {
		return rec, ErrClosed
	}
	if i < 0 || i >= len(r.frames) {
		return rec, fmt.Errorf("record %d out of range [0, %d)", i, len(r.frames))
	}
	f := r.frames[i]

	compressed := make([]byte, f.length)
	if _, err := r.mmap.ReadAt(compressed, f.offset); err != nil {
		return rec, &FrameError{Index: i, Offset: f.offset, Cause: err}
	}
	if crc32.ChecksumIEEE(compressed) != f.sum {
		return rec, &FrameError{Index: i, Offset: f.offset, Cause: fmt.Errorf("checksum mismatch")}
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return rec, &FrameError{Index: i, Offset: f.offset, Cause: fmt.Errorf("failed to decompress: %w", err)}
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, &FrameError{Index: i, Offset: f.offset, Cause: err}
	}
	return rec, nil
}

// Records decodes every record in file order
func (r *Reader) Records() ([]simulation.TurnRecord, error) {
	out := make([]simulation.TurnRecord, 0, len(r.frames))
	for i := range r.frames {
		rec, err := r.Record(i)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close unmaps the file
func (r *Reader) Close() error {
	if r.mmap == nil {
		return nil
	}
	err := r.mmap.Close()
	r.mmap = nil
	return err
}
