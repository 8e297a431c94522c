// Package persistence provides the binary artifact format shared by the
// similarity index and the metadata side-table: magic/version headers, CRC32
// payload checksums, and atomic complete-or-absent file writes.
package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// MagicNumber identifies index artifacts (ASCII: "FVEC").
	MagicNumber = 0x46564543
	// MetaMagicNumber identifies metadata artifacts (ASCII: "FVME").
	MetaMagicNumber = 0x46564D45
	// Version is the current artifact format version (v1.0.0).
	Version = 0x00010000

	// KindFlat marks a flat (exhaustive-search) index payload.
	KindFlat = 1
)

var (
	ErrInvalidMagic     = errors.New("invalid magic number")
	ErrInvalidVersion   = errors.New("unsupported version")
	ErrInvalidKind      = errors.New("invalid index kind")
	ErrInvalidHeader    = errors.New("invalid header field")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Header is the fixed-size header at the start of every index artifact.
// The vector payload follows it, then a trailing uint32 CRC32 of the payload.
type Header struct {
	Magic       uint32
	Version     uint32
	Kind        uint8 // 1=Flat
	Metric      uint8
	Padding     [2]byte
	Dimension   uint32
	VectorCount uint64
}

var byteOrder = binary.LittleEndian

// WriteHeader writes the artifact header, stamping magic and version.
func WriteHeader(w io.Writer, h *Header) error {
	h.Magic = MagicNumber
	h.Version = Version
	return binary.Write(w, byteOrder, h)
}

// ReadHeader reads and validates an artifact header.
func ReadHeader(r io.Reader) (*Header, error) {
	var h Header
	if err := binary.Read(r, byteOrder, &h); err != nil {
		return nil, err
	}
	if h.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, h.Version)
	}
	return &h, nil
}

// WriteMetaHeader writes the metadata artifact header. The codec name is
// recorded so the artifact is self-describing: readers select the codec by
// name regardless of the store's current configuration.
func WriteMetaHeader(w io.Writer, codecName string) error {
	if err := binary.Write(w, byteOrder, uint32(MetaMagicNumber)); err != nil {
		return err
	}
	if err := binary.Write(w, byteOrder, uint32(Version)); err != nil {
		return err
	}
	if err := binary.Write(w, byteOrder, uint16(len(codecName))); err != nil {
		return err
	}
	_, err := w.Write([]byte(codecName))
	return err
}

// ReadMetaHeader reads the metadata artifact header and returns the codec name.
func ReadMetaHeader(r io.Reader) (string, error) {
	var magic, version uint32
	if err := binary.Read(r, byteOrder, &magic); err != nil {
		return "", err
	}
	if magic != MetaMagicNumber {
		return "", fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, magic)
	}
	if err := binary.Read(r, byteOrder, &version); err != nil {
		return "", err
	}
	if version != Version {
		return "", fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, version)
	}
	var nameLen uint16
	if err := binary.Read(r, byteOrder, &nameLen); err != nil {
		return "", err
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return "", err
	}
	return string(name), nil
}
