package common

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DefaultCopyBufferSize bounds the memory used by streamed range copies
const DefaultCopyBufferSize = 1 << 20

// ValidateMagic checks that data starts with the expected ASCII signature
func ValidateMagic(data []byte, magic string) error {
	if len(data) < len(magic) {
		return fmt.Errorf("invalid header: expected %d bytes, got %d", len(magic), len(data))
	}
	if string(data[:len(magic)]) != magic {
		return fmt.Errorf("invalid header: expected '%s', got '%s'", magic, string(data[:len(magic)]))
	}
	return nil
}

// Uint16LEAt decodes a little-endian uint16 at offset, failing instead of panicking on short data
func Uint16LEAt(data []byte, offset int) (uint16, error) {
	if offset < 0 || offset+2 > len(data) {
		return 0, fmt.Errorf("uint16 at offset %d exceeds %d bytes", offset, len(data))
	}
	return binary.LittleEndian.Uint16(data[offset:]), nil
}

// Uint32LEAt decodes a little-endian uint32 at offset, failing instead of panicking on short data
func Uint32LEAt(data []byte, offset int) (uint32, error) {
	if offset < 0 || offset+4 > len(data) {
		return 0, fmt.Errorf("uint32 at offset %d exceeds %d bytes", offset, len(data))
	}
	return binary.LittleEndian.Uint32(data[offset:]), nil
}

// ReadBytesAt reads exactly count bytes starting at offset.
// A truncated source yields io.ErrUnexpectedEOF (or io.EOF when nothing was read).
// Counts above DefaultCopyBufferSize are read incrementally, so a count taken
// from untrusted data never allocates more than the source actually holds.
func ReadBytesAt(reader io.ReaderAt, offset int64, count int) ([]byte, error) {
	section := io.NewSectionReader(reader, offset, int64(count))
	if count <= DefaultCopyBufferSize {
		buffer := make([]byte, count)
		if _, err := io.ReadFull(section, buffer); err != nil {
			return nil, err
		}
		return buffer, nil
	}

	buffer, err := io.ReadAll(section)
	if err != nil {
		return nil, err
	}
	switch {
	case len(buffer) == 0:
		return nil, io.EOF
	case len(buffer) < count:
		return nil, fmt.Errorf("expected to read %d bytes, got %d: %w", count, len(buffer), io.ErrUnexpectedEOF)
	}
	return buffer, nil
}

// CopyRange streams length bytes starting at offset from src into dst
// through a buffer of at most DefaultCopyBufferSize bytes.
func CopyRange(dst io.Writer, src io.ReaderAt, offset, length int64) (int64, error) {
	size := int64(DefaultCopyBufferSize)
	if length < size {
		size = length
	}
	if size <= 0 {
		return 0, nil
	}
	buffer := make([]byte, size)

	written, err := io.CopyBuffer(dst, io.NewSectionReader(src, offset, length), buffer)
	if err != nil {
		return written, err
	}
	if written != length {
		return written, fmt.Errorf("expected to copy %d bytes, copied %d: %w", length, written, io.ErrUnexpectedEOF)
	}
	return written, nil
}
