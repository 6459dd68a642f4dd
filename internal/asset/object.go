package asset

import (
	"encoding/binary"
	"fmt"

	"github.com/jchantrell/uasset/internal/stream"
)

// Object flags. The low bit marks objects whose payload begins with an
// embedded name; the remaining bits are carried through untouched.
const (
	// FlagNamed marks a payload that starts with a length-prefixed name
	// followed by a length-prefixed content blob.
	FlagNamed uint32 = 1 << 0
)

// Descriptor is one fixed-size record in the object table. ByteOffset is
// relative to the header's DataOffset and is reassigned on every write;
// everything else is stable across edits.
type Descriptor struct {
	ID         uint64
	ByteOffset uint32
	ByteLength uint32
	TypeID     uint32
	Flags      uint32
}

// descriptorSize is the on-disk size of one table record.
const descriptorSize = 24

// Object pairs a descriptor with its owned payload bytes. The payload is
// opaque to the codec except for the name/content views on named
// objects, which read and rewrite the payload in place.
type Object struct {
	Descriptor

	payload []byte
	order   binary.ByteOrder
}

// newObject wires an object to the container's byte order, which the
// named payload views need for their length prefixes.
func newObject(d Descriptor, payload []byte, order binary.ByteOrder) *Object {
	d.ByteLength = uint32(len(payload))
	return &Object{Descriptor: d, payload: payload, order: order}
}

// Payload returns the raw payload bytes. The slice is owned by the
// object; callers must not hold it across a SetPayload.
func (o *Object) Payload() []byte {
	return o.payload
}

// SetPayload replaces the payload and updates the descriptor's length.
// The byte offset is left stale on purpose; the next write pass assigns
// fresh offsets for every object.
func (o *Object) SetPayload(payload []byte) {
	o.payload = payload
	o.ByteLength = uint32(len(payload))
}

// Named reports whether the payload carries an embedded name.
func (o *Object) Named() bool {
	return o.Flags&FlagNamed != 0
}

// namedParts splits a named payload into its name and content views.
func (o *Object) namedParts() (name string, content []byte, err error) {
	r := stream.NewReader(o.payload)
	r.SetOrder(o.order)
	name, err = r.LenString()
	if err != nil {
		return "", nil, fmt.Errorf("object %d: reading embedded name: %w", o.ID, err)
	}
	size, err := r.Uint32()
	if err != nil {
		return "", nil, fmt.Errorf("object %d: reading content size: %w", o.ID, err)
	}
	content, err = r.Bytes(int(size))
	if err != nil {
		return "", nil, fmt.Errorf("object %d: reading content: %w", o.ID, err)
	}
	return name, content, nil
}

// rebuildNamed reassembles the payload from a name and content pair.
// Name and content live in the same buffer, so changing either rewrites
// the payload and updates the descriptor length.
func (o *Object) rebuildNamed(name string, content []byte) {
	w := stream.NewWriter()
	w.SetOrder(o.order)
	w.WriteLenString(name)
	w.WriteUint32(uint32(len(content)))
	w.WriteBytes(content)
	o.SetPayload(w.Bytes())
}

// Name returns the embedded name of a named object. Unnamed objects
// have no name and return the empty string.
func (o *Object) Name() (string, error) {
	if !o.Named() {
		return "", nil
	}
	name, _, err := o.namedParts()
	return name, err
}

// SetName replaces the embedded name, rewriting the payload prefix.
func (o *Object) SetName(name string) error {
	if !o.Named() {
		return fmt.Errorf("object %d is not a named object", o.ID)
	}
	_, content, err := o.namedParts()
	if err != nil {
		return err
	}
	o.rebuildNamed(name, content)
	return nil
}

// Content returns the content view of the payload: the blob following
// the embedded name for named objects, the whole payload otherwise.
func (o *Object) Content() ([]byte, error) {
	if !o.Named() {
		return o.payload, nil
	}
	_, content, err := o.namedParts()
	return content, err
}

// SetContent replaces the content view, preserving the embedded name of
// named objects.
func (o *Object) SetContent(content []byte) error {
	if !o.Named() {
		o.SetPayload(content)
		return nil
	}
	name, _, err := o.namedParts()
	if err != nil {
		return err
	}
	o.rebuildNamed(name, content)
	return nil
}
