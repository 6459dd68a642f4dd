package asset

import (
	"fmt"
	"io"

	"github.com/jchantrell/uasset/internal/stream"
)

// Write serializes f to w. The layout pass runs first, so every offset
// and length is final before a single byte is emitted; the header's
// derived fields are backpatched in the internal buffer once the total
// size is known, and the sink only ever sees one complete write. The
// File stays valid for further edits and writes.
//
// Callers writing over a file that must survive a failure should write
// to a temporary destination and rename it into place afterwards.
func Write(f *File, w io.Writer) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing container: %w", err)
	}
	return nil
}

// Encode serializes f into a fresh buffer.
func Encode(f *File) ([]byte, error) {
	// Layout pass: offsets in model sequence order, table id-sorted.
	span := computeLayout(f.objects)
	if err := validateTable(descriptors(f.objects), span); err != nil {
		return nil, err
	}

	cur := stream.NewWriter()
	patches, err := encodeHeader(&f.Header, cur)
	if err != nil {
		return nil, err
	}

	count := uint32(len(f.objects))
	cur.WriteUint32(count)
	encodeTable(f.objects, cur)

	dataOffset := uint32(cur.Pos())
	encodeDataRegion(f.objects, cur, dataOffset)

	f.Header.MetadataSize = metadataSize(count)
	f.Header.FileSize = dataOffset + span
	f.Header.DataOffset = dataOffset
	if err := cur.PatchUint32(patches.metadataSize, f.Header.MetadataSize); err != nil {
		return nil, fmt.Errorf("patching metadata size: %w", err)
	}
	if err := cur.PatchUint32(patches.fileSize, f.Header.FileSize); err != nil {
		return nil, fmt.Errorf("patching file size: %w", err)
	}
	if err := cur.PatchUint32(patches.dataOffset, f.Header.DataOffset); err != nil {
		return nil, fmt.Errorf("patching data offset: %w", err)
	}

	return cur.Bytes(), nil
}

// encodeDataRegion emits payloads in layout order with zero padding up
// to each object's assigned offset.
func encodeDataRegion(objects []*Object, cur *stream.Writer, dataOffset uint32) {
	for _, o := range objects {
		start := int(dataOffset + o.ByteOffset)
		if pad := start - cur.Pos(); pad > 0 {
			cur.WriteBytes(make([]byte, pad))
		}
		cur.WriteBytes(o.payload)
	}
}

func descriptors(objects []*Object) []Descriptor {
	descs := make([]Descriptor, len(objects))
	for i, o := range objects {
		descs[i] = o.Descriptor
	}
	return descs
}
