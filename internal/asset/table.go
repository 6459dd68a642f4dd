package asset

import (
	"fmt"
	"sort"

	"github.com/jchantrell/uasset/internal/stream"
)

// Alignment is the payload alignment boundary inside the data region.
// Every payload begins at a multiple of this, measured from DataOffset.
const Alignment = 8

func alignUp(n uint32) uint32 {
	rem := n % Alignment
	if rem == 0 {
		return n
	}
	return n + Alignment - rem
}

// decodeTable reads count descriptor records and validates them against
// the declared size of the data region.
func decodeTable(r *stream.Reader, count uint32, dataSize uint32) ([]Descriptor, error) {
	descs := make([]Descriptor, 0, count)
	for i := uint32(0); i < count; i++ {
		var d Descriptor
		var err error
		if d.ID, err = r.Uint64(); err != nil {
			return nil, fmt.Errorf("reading descriptor %d: %w", i, err)
		}
		if d.ByteOffset, err = r.Uint32(); err != nil {
			return nil, fmt.Errorf("reading descriptor %d: %w", i, err)
		}
		if d.ByteLength, err = r.Uint32(); err != nil {
			return nil, fmt.Errorf("reading descriptor %d: %w", i, err)
		}
		if d.TypeID, err = r.Uint32(); err != nil {
			return nil, fmt.Errorf("reading descriptor %d: %w", i, err)
		}
		if d.Flags, err = r.Uint32(); err != nil {
			return nil, fmt.Errorf("reading descriptor %d: %w", i, err)
		}
		descs = append(descs, d)
	}
	if err := validateTable(descs, dataSize); err != nil {
		return nil, err
	}
	return descs, nil
}

// validateTable rejects descriptors that repeat an id, run outside the
// data region, or overlap one another.
func validateTable(descs []Descriptor, dataSize uint32) error {
	seen := make(map[uint64]struct{}, len(descs))
	for _, d := range descs {
		if _, ok := seen[d.ID]; ok {
			return fmt.Errorf("%w: id %d appears twice", ErrMalformedTable, d.ID)
		}
		seen[d.ID] = struct{}{}

		end := uint64(d.ByteOffset) + uint64(d.ByteLength)
		if end > uint64(dataSize) {
			return fmt.Errorf("%w: object %d range [%d, %d) exceeds data region size %d",
				ErrMalformedTable, d.ID, d.ByteOffset, end, dataSize)
		}
	}

	byOffset := make([]Descriptor, len(descs))
	copy(byOffset, descs)
	sort.Slice(byOffset, func(i, j int) bool { return byOffset[i].ByteOffset < byOffset[j].ByteOffset })
	for i := 1; i < len(byOffset); i++ {
		prev, cur := byOffset[i-1], byOffset[i]
		if prev.ByteOffset+prev.ByteLength > cur.ByteOffset {
			return fmt.Errorf("%w: objects %d and %d overlap", ErrMalformedTable, prev.ID, cur.ID)
		}
	}
	return nil
}

// encodeTable writes descriptors in ascending id order. Physical layout
// is controlled by the model's sequence order (see computeLayout); the
// table stays id-sorted for lookup stability.
func encodeTable(objects []*Object, w *stream.Writer) {
	byID := make([]*Object, len(objects))
	copy(byID, objects)
	sort.Slice(byID, func(i, j int) bool { return byID[i].ID < byID[j].ID })

	for _, o := range byID {
		w.WriteUint64(o.ID)
		w.WriteUint32(o.ByteOffset)
		w.WriteUint32(o.ByteLength)
		w.WriteUint32(o.TypeID)
		w.WriteUint32(o.Flags)
	}
}

// computeLayout assigns each object a fresh byte offset in model
// sequence order: the running total of previously placed payloads,
// each aligned up to the boundary. Returns the total span of the data
// region (the end of the last payload, with no trailing padding).
func computeLayout(objects []*Object) uint32 {
	var offset uint32
	var span uint32
	for _, o := range objects {
		o.ByteOffset = offset
		o.ByteLength = uint32(len(o.payload))
		span = offset + o.ByteLength
		offset = alignUp(span)
	}
	return span
}
