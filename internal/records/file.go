package records

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
)

// Codec describes the fixed layout of one record type. Encode receives a
// zeroed buffer of exactly Size bytes.
type Codec[T any] struct {
	Size   int
	Encode func(rec T, buf []byte)
	Decode func(buf []byte) (T, error)
}

// Sequence is a lazy, finite pass over records in file order.
type Sequence[T any] interface {
	Next() bool
	Value() T
	Err() error
	Close() error
}

// File is an append-only flat file of homogeneous fixed-size records.
// There is no update or delete; reads are full linear scans.
type File[T any] struct {
	path  string
	codec Codec[T]
}

func Open[T any](path string, codec Codec[T]) *File[T] {
	return &File[T]{path: path, codec: codec}
}

func (f *File[T]) Path() string { return f.path }

// Create makes the file empty, creating it when missing.
func (f *File[T]) Create() error {
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", f.path, err)
	}
	return fh.Close()
}

// Touch creates the file when missing and leaves existing contents alone.
func (f *File[T]) Touch() error {
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("touch %s: %w", f.path, err)
	}
	return fh.Close()
}

// Append writes rec at the end of the file. A failed append may leave a
// partial record at the tail; it is not rolled back.
func (f *File[T]) Append(rec T) error {
	buf := make([]byte, f.codec.Size)
	f.codec.Encode(rec, buf)
	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", f.path, err)
	}
	n, err := fh.Write(buf)
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		_ = fh.Close()
		return fmt.Errorf("append to %s: %w", f.path, err)
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.path, err)
	}
	return nil
}

// Scan starts a new pass from the first record. A missing file scans as empty.
func (f *File[T]) Scan() (*Cursor[T], error) {
	fh, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Cursor[T]{codec: f.codec, done: true}, nil
		}
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	return &Cursor[T]{
		path:  f.path,
		fh:    fh,
		rd:    bufio.NewReader(fh),
		codec: f.codec,
		buf:   make([]byte, f.codec.Size),
	}, nil
}

// Find returns the first record satisfying pred.
func (f *File[T]) Find(pred func(T) bool) (T, bool, error) {
	var zero T
	cur, err := f.Scan()
	if err != nil {
		return zero, false, err
	}
	defer cur.Close()
	for cur.Next() {
		if rec := cur.Value(); pred(rec) {
			return rec, true, nil
		}
	}
	return zero, false, cur.Err()
}

// All collects every record satisfying pred; a nil pred keeps everything.
func (f *File[T]) All(pred func(T) bool) ([]T, error) {
	cur, err := f.Scan()
	if err != nil {
		return nil, err
	}
	defer cur.Close()
	var out []T
	for cur.Next() {
		if rec := cur.Value(); pred == nil || pred(rec) {
			out = append(out, rec)
		}
	}
	return out, cur.Err()
}

// Empty reports whether the file holds zero records.
func (f *File[T]) Empty() (bool, error) {
	_, found, err := f.Find(func(T) bool { return true })
	return !found, err
}

// Cursor reads one record per Next. A zero-byte read at end of file ends
// the pass; so does a torn record at the tail, which is logged.
type Cursor[T any] struct {
	path  string
	fh    *os.File
	rd    *bufio.Reader
	codec Codec[T]
	buf   []byte
	cur   T
	err   error
	done  bool
}

func (c *Cursor[T]) Next() bool {
	if c.done {
		return false
	}
	n, err := io.ReadFull(c.rd, c.buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		c.done = true
		return false
	case errors.Is(err, io.ErrUnexpectedEOF):
		log.Printf("record file: %s: ignoring %d trailing bytes of a partial record", c.path, n)
		c.done = true
		return false
	default:
		c.err = fmt.Errorf("read %s: %w", c.path, err)
		c.done = true
		return false
	}
	rec, err := c.codec.Decode(c.buf)
	if err != nil {
		c.err = fmt.Errorf("decode %s: %w", c.path, err)
		c.done = true
		return false
	}
	c.cur = rec
	return true
}

func (c *Cursor[T]) Value() T { return c.cur }

func (c *Cursor[T]) Err() error { return c.err }

func (c *Cursor[T]) Close() error {
	c.done = true
	if c.fh == nil {
		return nil
	}
	err := c.fh.Close()
	c.fh = nil
	return err
}

var _ Sequence[int] = (*Cursor[int])(nil)
