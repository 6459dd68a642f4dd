package asset

import (
	"fmt"
	"io"
	"sort"

	"github.com/jchantrell/uasset/internal/stream"
)

// Read parses a complete container from r. The read is all-or-nothing:
// any codec failure returns the originating error and no File.
func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading container: %w", err)
	}
	return Decode(data)
}

// Decode parses a container from an in-memory buffer.
//
// The pass runs header, then table, then data region. Payloads are read
// in offset order, so the model's object sequence mirrors the physical
// layout of the input; an edit-free write reproduces it byte for byte.
func Decode(data []byte) (*File, error) {
	cur := stream.NewReader(data)

	header, err := decodeHeader(cur)
	if err != nil {
		return nil, err
	}
	if int(header.FileSize) > len(data) {
		return nil, fmt.Errorf("%w: header declares %d bytes, input has %d",
			ErrTruncatedInput, header.FileSize, len(data))
	}

	count, err := cur.Uint32()
	if err != nil {
		return nil, fmt.Errorf("reading object count: %w", err)
	}
	// Both checks run in uint64: a hostile count must not wrap them and
	// reach the table decoder's allocation.
	wantMeta := 4 + uint64(count)*descriptorSize
	if uint64(header.MetadataSize) != wantMeta {
		return nil, fmt.Errorf("%w: metadata size %d does not match %d objects (want %d)",
			ErrMalformedHeader, header.MetadataSize, count, wantMeta)
	}
	if minData := uint64(header.EncodedSize()) + wantMeta; uint64(header.DataOffset) < minData || header.DataOffset > header.FileSize {
		return nil, fmt.Errorf("%w: data offset %d outside file of %d bytes",
			ErrMalformedHeader, header.DataOffset, header.FileSize)
	}

	descs, err := decodeTable(cur, count, header.FileSize-header.DataOffset)
	if err != nil {
		return nil, err
	}

	objects, err := decodeDataRegion(cur, header, descs)
	if err != nil {
		return nil, err
	}

	return &File{Header: header, objects: objects}, nil
}

// metadataSize is the object count field plus the descriptor table.
func metadataSize(count uint32) uint32 {
	return 4 + count*descriptorSize
}

// decodeDataRegion reads each payload verbatim. Descriptors are
// processed in offset order, since the table's id order need not match
// the physical order, and the cursor only ever moves forward. The sort
// is stable so zero-length payloads sharing an offset keep table order
// and the model order stays deterministic.
func decodeDataRegion(cur *stream.Reader, header Header, descs []Descriptor) ([]*Object, error) {
	byOffset := make([]Descriptor, len(descs))
	copy(byOffset, descs)
	sort.SliceStable(byOffset, func(i, j int) bool { return byOffset[i].ByteOffset < byOffset[j].ByteOffset })

	order := header.ByteOrder.Binary()
	objects := make([]*Object, 0, len(byOffset))
	for _, d := range byOffset {
		if err := cur.SeekTo(int(header.DataOffset + d.ByteOffset)); err != nil {
			return nil, fmt.Errorf("object %d: %w", d.ID, err)
		}
		payload, err := cur.Bytes(int(d.ByteLength))
		if err != nil {
			return nil, fmt.Errorf("object %d: reading payload: %w", d.ID, err)
		}
		objects = append(objects, newObject(d, payload, order))
	}
	return objects, nil
}
