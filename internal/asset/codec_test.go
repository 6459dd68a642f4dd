package asset

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildContainer returns a file with a mix of named, unnamed, and empty
// payloads, plus its serialized form.
func buildContainer(t *testing.T, order ByteOrder) (*File, []byte) {
	t.Helper()
	f := newTestFile(t, order)
	f.AddObject(1, FlagNamed, namedPayload(order, "mesh/ship.obj", []byte("vertices and faces")))
	f.AddObject(2, 0, []byte("dedede"))
	f.AddObject(3, 0, nil) // zero-length payload
	f.AddObject(1, FlagNamed, namedPayload(order, "mesh/station.obj", []byte("more geometry")))

	data, err := Encode(f)
	require.NoError(t, err)
	return f, data
}

func TestEmptyContainer(t *testing.T) {
	f := newTestFile(t, LittleEndian)
	data, err := Encode(f)
	require.NoError(t, err)

	// An empty container is header plus a zero object count: the data
	// region starts exactly at end of file.
	assert.Equal(t, uint32(4), f.Header.MetadataSize)
	assert.Equal(t, f.Header.FileSize, f.Header.DataOffset)
	assert.Equal(t, uint32(f.Header.EncodedSize())+4, f.Header.FileSize)
	assert.Len(t, data, int(f.Header.FileSize))

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, f.Header, got.Header)
}

func TestRoundTripIdentity(t *testing.T) {
	for _, order := range []ByteOrder{LittleEndian, BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			_, data := buildContainer(t, order)

			got, err := Decode(data)
			require.NoError(t, err)

			again, err := Encode(got)
			require.NoError(t, err)
			assert.Equal(t, data, again, "edit-free round trip must be byte-identical")
		})
	}
}

func TestRoundTripPreservesModel(t *testing.T) {
	f, data := buildContainer(t, LittleEndian)

	got, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, f.Len(), got.Len())
	assert.Equal(t, f.Header, got.Header)
	for i, want := range f.Objects() {
		obj := got.Objects()[i]
		assert.Equal(t, want.Descriptor, obj.Descriptor)
		assert.Equal(t, want.Payload(), obj.Payload())
	}

	name, err := got.Objects()[0].Name()
	require.NoError(t, err)
	assert.Equal(t, "mesh/ship.obj", name)
}

func TestWriteReadIdempotence(t *testing.T) {
	_, data := buildContainer(t, LittleEndian)

	once, err := Decode(data)
	require.NoError(t, err)
	first, err := Encode(once)
	require.NoError(t, err)

	twice, err := Decode(first)
	require.NoError(t, err)
	second, err := Encode(twice)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGrowShiftsLaterObjects(t *testing.T) {
	f := newTestFile(t, LittleEndian)
	first := f.AddObject(1, 0, []byte("abc"))
	second := f.AddObject(1, 0, []byte("dedede"))

	data, err := Encode(f)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)

	obj2, err := got.Object(second)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), obj2.ByteOffset)

	// Growing the first payload pushes the second to the next boundary.
	require.NoError(t, got.SetPayload(first, []byte("ABCDEFGHIJ")))
	data, err = Encode(got)
	require.NoError(t, err)
	got, err = Decode(data)
	require.NoError(t, err)

	obj1, err := got.Object(first)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), obj1.ByteOffset)
	assert.Equal(t, uint32(10), obj1.ByteLength)

	obj2, err = got.Object(second)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), obj2.ByteOffset)
	assert.Equal(t, []byte("dedede"), obj2.Payload())

	// The alignment gap between the payloads is zero-filled.
	gap := data[got.Header.DataOffset+10 : got.Header.DataOffset+16]
	assert.Equal(t, make([]byte, 6), gap)
	assert.Equal(t, got.Header.DataOffset+22, got.Header.FileSize)
}

func TestRemoveClosesGap(t *testing.T) {
	f := newTestFile(t, LittleEndian)
	f.AddObject(1, 0, []byte("first"))
	middle := f.AddObject(1, 0, []byte("second"))
	last := f.AddObject(1, 0, []byte("third"))

	require.NoError(t, f.RemoveObject(middle))

	data, err := Encode(f)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, 2, got.Len())
	_, err = got.Object(middle)
	require.ErrorIs(t, err, ErrObjectNotFound)

	obj, err := got.Object(last)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), obj.ByteOffset)
	assert.Equal(t, []byte("third"), obj.Payload())
}

func TestLayoutInvariants(t *testing.T) {
	f, _ := buildContainer(t, LittleEndian)
	f.AddObject(9, 0, bytes.Repeat([]byte{0xaa}, 100))
	require.NoError(t, f.RemoveObject(1))

	data, err := Encode(f)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)

	var end uint32
	for _, obj := range got.Objects() {
		assert.Zero(t, obj.ByteOffset%Alignment, "object %d not aligned", obj.ID)
		assert.GreaterOrEqual(t, obj.ByteOffset, end, "object %d overlaps its predecessor", obj.ID)
		end = obj.ByteOffset + obj.ByteLength
	}
	assert.Equal(t, got.Header.DataOffset+end, got.Header.FileSize)
}

func TestReorderControlsLayout(t *testing.T) {
	f := newTestFile(t, LittleEndian)
	a := f.AddObject(1, 0, []byte("aaaa"))
	b := f.AddObject(1, 0, []byte("bb"))
	objs := f.Objects()
	require.NoError(t, f.SetObjects([]*Object{objs[1], objs[0]}))

	data, err := Encode(f)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)

	// b now leads the data region; a follows at the next boundary.
	assert.Equal(t, b, got.Objects()[0].ID)
	assert.Equal(t, uint32(0), got.Objects()[0].ByteOffset)
	assert.Equal(t, a, got.Objects()[1].ID)
	assert.Equal(t, uint32(8), got.Objects()[1].ByteOffset)
}

func TestDecodeHeaderErrors(t *testing.T) {
	_, data := buildContainer(t, LittleEndian)

	bad := bytes.Clone(data)
	binary.BigEndian.PutUint32(bad, 7)
	_, err := Decode(bad)
	require.ErrorIs(t, err, ErrMalformedHeader)

	bad = bytes.Clone(data)
	bad[4] = 5 // byte order tag
	_, err = Decode(bad)
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDecodeMetadataSizeMismatch(t *testing.T) {
	f, data := buildContainer(t, LittleEndian)

	// Derived fields sit at the end of the header.
	metaPos := f.Header.EncodedSize() - 12
	bad := bytes.Clone(data)
	binary.LittleEndian.PutUint32(bad[metaPos:], f.Header.MetadataSize+1)
	_, err := Decode(bad)
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDecodeDataOffsetOutOfBounds(t *testing.T) {
	f, data := buildContainer(t, LittleEndian)

	offPos := f.Header.EncodedSize() - 4
	bad := bytes.Clone(data)
	binary.LittleEndian.PutUint32(bad[offPos:], f.Header.FileSize+1)
	_, err := Decode(bad)
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDecodeHostileObjectCount(t *testing.T) {
	f := newTestFile(t, LittleEndian)
	data, err := Encode(f)
	require.NoError(t, err)
	hdr := f.Header.EncodedSize()

	bad := make([]byte, 100)
	copy(bad, data)
	binary.LittleEndian.PutUint32(bad[hdr-8:], 100) // file size
	binary.LittleEndian.PutUint32(bad[hdr-4:], 100) // data offset

	// 4 + count*24 wraps to 12 in uint32 arithmetic; the check must not.
	const wrapCount = 178956971
	binary.LittleEndian.PutUint32(bad[hdr-12:], 12) // metadata size
	binary.LittleEndian.PutUint32(bad[hdr:], wrapCount)
	_, err = Decode(bad)
	require.ErrorIs(t, err, ErrMalformedHeader)

	// A metadata size that matches a huge count in uint32 still declares
	// a header span far past the data offset.
	const bigCount = 178956970
	binary.LittleEndian.PutUint32(bad[hdr-12:], 4+bigCount*24)
	binary.LittleEndian.PutUint32(bad[hdr:], bigCount)
	_, err = Decode(bad)
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDecodeZeroLengthTieOrder(t *testing.T) {
	f := newTestFile(t, LittleEndian)
	f.AddObject(1, 0, []byte("lead"))
	// Zero-length payloads share the trailing payload's offset.
	f.AddObject(2, 0, nil)
	f.AddObject(3, 0, nil)
	f.AddObject(4, 0, nil)
	f.AddObject(5, 0, []byte("tail"))

	data, err := Encode(f)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	ids := make([]uint64, 0, got.Len())
	for _, obj := range got.Objects() {
		ids = append(ids, obj.ID)
	}
	// Tied offsets keep table order, so the model order is deterministic.
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, ids)

	again, err := Encode(got)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestDecodeTruncated(t *testing.T) {
	_, data := buildContainer(t, LittleEndian)

	// Shorter than the declared file size.
	_, err := Decode(data[:len(data)-5])
	require.ErrorIs(t, err, ErrTruncatedInput)

	// Cut inside the header.
	_, err = Decode(data[:7])
	require.ErrorIs(t, err, ErrTruncatedInput)

	_, err = Decode(nil)
	require.ErrorIs(t, err, ErrTruncatedInput)
}

func TestDecodeMalformedTable(t *testing.T) {
	f, data := buildContainer(t, LittleEndian)
	tableBase := f.Header.EncodedSize() + 4

	// Length running past the data region.
	bad := bytes.Clone(data)
	binary.LittleEndian.PutUint32(bad[tableBase+8+4:], 0xffff)
	_, err := Decode(bad)
	require.ErrorIs(t, err, ErrMalformedTable)

	// Second descriptor repeating the first id.
	bad = bytes.Clone(data)
	copy(bad[tableBase+descriptorSize:], bad[tableBase:tableBase+8])
	_, err = Decode(bad)
	require.ErrorIs(t, err, ErrMalformedTable)

	// Second descriptor overlapping the first payload.
	bad = bytes.Clone(data)
	binary.LittleEndian.PutUint32(bad[tableBase+descriptorSize+8:], 2)
	_, err = Decode(bad)
	require.ErrorIs(t, err, ErrMalformedTable)
}

func TestReadWriteStreams(t *testing.T) {
	f, data := buildContainer(t, LittleEndian)

	got, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, f.Len(), got.Len())

	var buf bytes.Buffer
	require.NoError(t, Write(got, &buf))
	assert.Equal(t, data, buf.Bytes())
}

func TestFormatVersion22(t *testing.T) {
	f, err := NewFile(FormatVersion22, "6000.0.23f1", LittleEndian)
	require.NoError(t, err)
	f.AddObject(1, 0, []byte("v22 payload"))

	data, err := Encode(f)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(FormatVersion22), got.Header.FormatVersion)
	assert.Equal(t, "6000.0.23f1", got.Header.ToolVersion)
}
