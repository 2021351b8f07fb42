package plugin

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/moe-charm/nyash/runtime"
)

// BID-1 is the length-prefixed tag/size/payload encoding spoken across the
// plugin boundary. The layout is fixed by the plugin ABI, so the codec is
// written against encoding/binary directly:
//
//	header:  version u16 LE | argc u16 LE
//	entry:   tag u8 | reserved u8 | size u16 LE | payload[size]

// Version is the BID protocol version this host speaks.
const Version uint16 = 1

// Tag identifies the payload type of one TLV entry.
type Tag uint8

const (
	TagBool   Tag = 1 // 1 byte, 0 or 1
	TagI32    Tag = 2 // 4 bytes LE
	TagI64    Tag = 3 // 8 bytes LE
	TagF32    Tag = 4 // 4 bytes IEEE 754
	TagF64    Tag = 5 // 8 bytes IEEE 754
	TagString Tag = 6 // UTF-8 bytes
	TagBytes  Tag = 7 // opaque bytes
	TagHandle Tag = 8 // type_id u32 LE + instance_id u32 LE
	TagVoid   Tag = 9 // empty
)

const headerSize = 4

// Encoder builds a BID-1 frame.
type Encoder struct {
	buf  []byte
	argc uint16
}

// NewEncoder creates an encoder with space reserved for the header.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, headerSize, 64)}
}

func (e *Encoder) entry(tag Tag, payload []byte) error {
	if len(payload) > math.MaxUint16 {
		return fmt.Errorf("bid: payload of %d bytes exceeds entry limit", len(payload))
	}
	if e.argc == math.MaxUint16 {
		return fmt.Errorf("bid: frame already holds %d entries", math.MaxUint16)
	}
	e.buf = append(e.buf, byte(tag), 0)
	e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(len(payload)))
	e.buf = append(e.buf, payload...)
	e.argc++
	return nil
}

// Bool appends a boolean entry.
func (e *Encoder) Bool(v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	return e.entry(TagBool, []byte{b})
}

// I64 appends a 64-bit integer entry.
func (e *Encoder) I64(v int64) error {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], uint64(v))
	return e.entry(TagI64, p[:])
}

// F64 appends a 64-bit float entry.
func (e *Encoder) F64(v float64) error {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], math.Float64bits(v))
	return e.entry(TagF64, p[:])
}

// String appends a UTF-8 string entry.
func (e *Encoder) String(v string) error {
	return e.entry(TagString, []byte(v))
}

// Bytes appends an opaque byte entry.
func (e *Encoder) Bytes(v []byte) error {
	return e.entry(TagBytes, v)
}

// Handle appends a plugin instance handle entry.
func (e *Encoder) Handle(typeID, instanceID uint32) error {
	var p [8]byte
	binary.LittleEndian.PutUint32(p[:4], typeID)
	binary.LittleEndian.PutUint32(p[4:], instanceID)
	return e.entry(TagHandle, p[:])
}

// Void appends an empty entry.
func (e *Encoder) Void() error {
	return e.entry(TagVoid, nil)
}

// Finish writes the header and returns the completed frame.
func (e *Encoder) Finish() []byte {
	binary.LittleEndian.PutUint16(e.buf[0:2], Version)
	binary.LittleEndian.PutUint16(e.buf[2:4], e.argc)
	return e.buf
}

// Entry is one decoded TLV entry.
type Entry struct {
	Tag     Tag
	Payload []byte
}

// Decode parses a BID-1 frame into its entries.
func Decode(data []byte) ([]Entry, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("bid: frame of %d bytes is shorter than the header", len(data))
	}
	version := binary.LittleEndian.Uint16(data[0:2])
	if version != Version {
		return nil, fmt.Errorf("bid: unsupported version %d", version)
	}
	argc := int(binary.LittleEndian.Uint16(data[2:4]))

	entries := make([]Entry, 0, argc)
	off := headerSize
	for i := 0; i < argc; i++ {
		if off+4 > len(data) {
			return nil, fmt.Errorf("bid: truncated entry header at offset %d", off)
		}
		tag := Tag(data[off])
		size := int(binary.LittleEndian.Uint16(data[off+2 : off+4]))
		off += 4
		if off+size > len(data) {
			return nil, fmt.Errorf("bid: entry payload of %d bytes overruns frame", size)
		}
		entries = append(entries, Entry{Tag: tag, Payload: data[off : off+size]})
		off += size
	}
	return entries, nil
}

// EncodeArgs marshals runtime values into a BID-1 frame. Only primitive
// Boxes and plugin handles cross the boundary; instances do not.
func EncodeArgs(args []runtime.Value) ([]byte, error) {
	e := NewEncoder()
	for _, a := range args {
		var err error
		switch a.Type {
		case runtime.TypeNull:
			err = e.Void()
		case runtime.TypeBool:
			err = e.Bool(a.BoolVal)
		case runtime.TypeInteger:
			err = e.I64(a.IntVal)
		case runtime.TypeFloat:
			err = e.F64(a.FloatVal)
		case runtime.TypeString:
			err = e.String(a.StringVal)
		case runtime.TypeHandle:
			err = e.Handle(a.HandleVal.TypeID, a.HandleVal.InstanceID)
		default:
			return nil, runtime.NewError(runtime.TypeError,
				"cannot pass %s across the plugin boundary", a.TypeName())
		}
		if err != nil {
			return nil, err
		}
	}
	return e.Finish(), nil
}

// DecodeResult unmarshals a single-entry BID-1 frame into a runtime value.
// Handle entries are resolved against the factory that owns the instance.
func DecodeResult(data []byte, resolve func(typeID, instanceID uint32) (runtime.Value, error)) (runtime.Value, error) {
	entries, err := Decode(data)
	if err != nil {
		return runtime.NullValue(), err
	}
	if len(entries) == 0 {
		return runtime.NullValue(), nil
	}
	return decodeEntry(entries[0], resolve)
}

func decodeEntry(entry Entry, resolve func(typeID, instanceID uint32) (runtime.Value, error)) (runtime.Value, error) {
	switch entry.Tag {
	case TagVoid:
		return runtime.NullValue(), nil
	case TagBool:
		if len(entry.Payload) != 1 {
			return runtime.NullValue(), fmt.Errorf("bid: bool payload of %d bytes", len(entry.Payload))
		}
		return runtime.BoolValue(entry.Payload[0] != 0), nil
	case TagI32:
		if len(entry.Payload) != 4 {
			return runtime.NullValue(), fmt.Errorf("bid: i32 payload of %d bytes", len(entry.Payload))
		}
		return runtime.IntegerValue(int64(int32(binary.LittleEndian.Uint32(entry.Payload)))), nil
	case TagI64:
		if len(entry.Payload) != 8 {
			return runtime.NullValue(), fmt.Errorf("bid: i64 payload of %d bytes", len(entry.Payload))
		}
		return runtime.IntegerValue(int64(binary.LittleEndian.Uint64(entry.Payload))), nil
	case TagF32:
		if len(entry.Payload) != 4 {
			return runtime.NullValue(), fmt.Errorf("bid: f32 payload of %d bytes", len(entry.Payload))
		}
		return runtime.FloatValue(float64(math.Float32frombits(binary.LittleEndian.Uint32(entry.Payload)))), nil
	case TagF64:
		if len(entry.Payload) != 8 {
			return runtime.NullValue(), fmt.Errorf("bid: f64 payload of %d bytes", len(entry.Payload))
		}
		return runtime.FloatValue(math.Float64frombits(binary.LittleEndian.Uint64(entry.Payload))), nil
	case TagString:
		return runtime.StringValue(string(entry.Payload)), nil
	case TagBytes:
		// Opaque bytes surface as a string Box; the payload is owned by the
		// plugin boundary, not interpreted here.
		return runtime.StringValue(string(entry.Payload)), nil
	case TagHandle:
		if len(entry.Payload) != 8 {
			return runtime.NullValue(), fmt.Errorf("bid: handle payload of %d bytes", len(entry.Payload))
		}
		typeID := binary.LittleEndian.Uint32(entry.Payload[:4])
		instanceID := binary.LittleEndian.Uint32(entry.Payload[4:])
		if resolve == nil {
			return runtime.NullValue(), fmt.Errorf("bid: no handle resolver for type %d", typeID)
		}
		return resolve(typeID, instanceID)
	}
	return runtime.NullValue(), fmt.Errorf("bid: unknown tag %d", entry.Tag)
}
