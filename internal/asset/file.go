// Package asset implements the binary codec for serialized asset
// containers: a versioned header, a fixed-size object descriptor table,
// and an alignment-padded data region of payloads. Read produces an
// editable File; Write recomputes every offset, length, and padding
// byte so an edited File serializes back into a valid container.
//
// The codec is single-owner and synchronous. A File must not be mutated
// while a Write pass is running; callers needing concurrent access
// serialize externally.
package asset

import (
	"fmt"
)

// File is the in-memory form of a container: one header plus an ordered
// sequence of objects. Sequence order is physical layout order on the
// next write, so reordering objects reorders the data region; the
// descriptor table itself is always written in id order.
type File struct {
	Header  Header
	objects []*Object
}

// NewFile creates an empty container with the given header identity.
// The derived header fields are filled in by the first write.
func NewFile(formatVersion uint32, toolVersion string, order ByteOrder) (*File, error) {
	f := &File{Header: Header{
		FormatVersion: formatVersion,
		ByteOrder:     order,
		ToolVersion:   toolVersion,
	}}
	if err := f.Header.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Len returns the number of objects.
func (f *File) Len() int {
	return len(f.objects)
}

// Objects returns the objects in sequence order. The slice is owned by
// the file; callers may reorder it in place via SetObjects but must not
// grow or shrink it directly.
func (f *File) Objects() []*Object {
	return f.objects
}

// SetObjects replaces the object sequence, controlling physical layout
// on the next write. Every object must already belong to the file.
func (f *File) SetObjects(objects []*Object) error {
	if len(objects) != len(f.objects) {
		return fmt.Errorf("asset: sequence has %d objects, file has %d", len(objects), len(f.objects))
	}
	current := make(map[uint64]struct{}, len(f.objects))
	for _, o := range f.objects {
		current[o.ID] = struct{}{}
	}
	seen := make(map[uint64]struct{}, len(objects))
	for _, o := range objects {
		if _, ok := current[o.ID]; !ok {
			return fmt.Errorf("%w: id %d", ErrObjectNotFound, o.ID)
		}
		if _, ok := seen[o.ID]; ok {
			return fmt.Errorf("%w: id %d", ErrDuplicateID, o.ID)
		}
		seen[o.ID] = struct{}{}
	}
	f.objects = objects
	return nil
}

// Object returns the object with the given id.
func (f *File) Object(id uint64) (*Object, error) {
	for _, o := range f.objects {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrObjectNotFound, id)
}

// SetPayload replaces an object's payload. The descriptor length is
// updated immediately; offsets stay stale until the next write pass.
func (f *File) SetPayload(id uint64, payload []byte) error {
	o, err := f.Object(id)
	if err != nil {
		return err
	}
	o.SetPayload(payload)
	return nil
}

// AddObject appends a new object with a fresh id: one past the largest
// id present, or 0 for an empty file. Returns the assigned id.
func (f *File) AddObject(typeID, flags uint32, payload []byte) uint64 {
	id := f.nextID()
	o := newObject(Descriptor{ID: id, TypeID: typeID, Flags: flags}, payload, f.Header.ByteOrder.Binary())
	f.objects = append(f.objects, o)
	return id
}

// AddObjectWithID appends a new object under a caller-chosen id.
func (f *File) AddObjectWithID(id uint64, typeID, flags uint32, payload []byte) error {
	if _, err := f.Object(id); err == nil {
		return fmt.Errorf("%w: id %d", ErrDuplicateID, id)
	}
	o := newObject(Descriptor{ID: id, TypeID: typeID, Flags: flags}, payload, f.Header.ByteOrder.Binary())
	f.objects = append(f.objects, o)
	return nil
}

// RemoveObject deletes an object. The gap it leaves in the data region
// closes naturally during the next write's offset recomputation; no
// tombstone remains in the model.
func (f *File) RemoveObject(id uint64) error {
	for i, o := range f.objects {
		if o.ID == id {
			f.objects = append(f.objects[:i], f.objects[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", ErrObjectNotFound, id)
}

func (f *File) nextID() uint64 {
	var next uint64
	for _, o := range f.objects {
		if o.ID >= next {
			next = o.ID + 1
		}
	}
	return next
}
