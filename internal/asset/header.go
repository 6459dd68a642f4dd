package asset

import (
	"encoding/binary"
	"fmt"

	"github.com/jchantrell/uasset/internal/stream"
)

// ByteOrder is the container's declared byte order for everything that
// follows the order tag in the header.
type ByteOrder uint8

const (
	// LittleEndian marks a little-endian container.
	LittleEndian ByteOrder = 0
	// BigEndian marks a big-endian container.
	BigEndian ByteOrder = 1
)

func (o ByteOrder) valid() bool {
	return o == LittleEndian || o == BigEndian
}

// Binary returns the encoding/binary order corresponding to the tag.
func (o ByteOrder) Binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big"
	}
	return "little"
}

// Format versions this codec understands. Version 21 is the current
// revision; 22 is the next one, which keeps the same layout.
const (
	FormatVersion21 = 21
	FormatVersion22 = 22
)

func recognizedVersion(v uint32) bool {
	return v == FormatVersion21 || v == FormatVersion22
}

// Header is the fixed-order leading region of a container. FormatVersion
// and the byte order tag are always stored big-endian; every later field
// honors the declared order.
type Header struct {
	FormatVersion uint32
	ByteOrder     ByteOrder
	ToolVersion   string

	// MetadataSize, FileSize, and DataOffset are derived during a write
	// pass and backpatched once the layout is final. After a successful
	// read or write they describe the serialized form.
	MetadataSize uint32
	FileSize     uint32
	DataOffset   uint32
}

// EncodedSize returns the number of bytes the header occupies on disk.
func (h *Header) EncodedSize() int {
	// version + order tag + len-prefixed tool version + three u32 fields.
	return 4 + 1 + 4 + len(h.ToolVersion) + 12
}

func (h *Header) validate() error {
	if !recognizedVersion(h.FormatVersion) {
		return fmt.Errorf("%w: unrecognized format version %d", ErrMalformedHeader, h.FormatVersion)
	}
	if !h.ByteOrder.valid() {
		return fmt.Errorf("%w: invalid byte order tag %d", ErrMalformedHeader, h.ByteOrder)
	}
	return nil
}

// decodeHeader reads the header and leaves the cursor positioned at the
// object count, with the cursor's byte order switched to the declared one.
func decodeHeader(r *stream.Reader) (Header, error) {
	var h Header

	version, err := r.Uint32()
	if err != nil {
		return h, fmt.Errorf("reading format version: %w", err)
	}
	h.FormatVersion = version

	tag, err := r.Uint8()
	if err != nil {
		return h, fmt.Errorf("reading byte order tag: %w", err)
	}
	h.ByteOrder = ByteOrder(tag)

	if err := h.validate(); err != nil {
		return h, err
	}
	r.SetOrder(h.ByteOrder.Binary())

	h.ToolVersion, err = r.LenString()
	if err != nil {
		return h, fmt.Errorf("reading tool version: %w", err)
	}
	if h.MetadataSize, err = r.Uint32(); err != nil {
		return h, fmt.Errorf("reading metadata size: %w", err)
	}
	if h.FileSize, err = r.Uint32(); err != nil {
		return h, fmt.Errorf("reading file size: %w", err)
	}
	if h.DataOffset, err = r.Uint32(); err != nil {
		return h, fmt.Errorf("reading data offset: %w", err)
	}

	return h, nil
}

// headerPatches records where the derived header fields were written so
// the writer can backpatch them once the full layout is known.
type headerPatches struct {
	metadataSize int
	fileSize     int
	dataOffset   int
}

// encodeHeader writes the header with zero placeholders for the derived
// size fields and switches the cursor to the declared byte order.
func encodeHeader(h *Header, w *stream.Writer) (headerPatches, error) {
	var p headerPatches
	if err := h.validate(); err != nil {
		return p, err
	}

	w.WriteUint32(h.FormatVersion)
	w.WriteUint8(uint8(h.ByteOrder))
	w.SetOrder(h.ByteOrder.Binary())
	w.WriteLenString(h.ToolVersion)

	p.metadataSize = w.Pos()
	w.WriteUint32(0)
	p.fileSize = w.Pos()
	w.WriteUint32(0)
	p.dataOffset = w.Pos()
	w.WriteUint32(0)

	return p, nil
}
