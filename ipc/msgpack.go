package ipc

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wippyai/hostbridge/errors"
)

// Buffer is a finished, encoded argument list.
type Buffer struct {
	data []byte
}

// NewBuffer wraps encoded bytes.
func NewBuffer(data []byte) *Buffer { return &Buffer{data: data} }

// Bytes returns the encoded form.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the encoded length.
func (b *Buffer) Len() int { return len(b.data) }

const maxPooledBufferCap = 64 * 1024

// minEncodedArg is the size of the smallest encoded argument: fixarray, tag, nil.
const minEncodedArg = 3

var encodeBufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// MsgpackSerializer collects values and encodes them with MessagePack on Finish.
// It is not safe for concurrent use.
type MsgpackSerializer struct {
	values   []Value
	msg      uint32
	finished bool
}

// NewMsgpackSerializer creates an empty serializer.
func NewMsgpackSerializer() *MsgpackSerializer {
	return &MsgpackSerializer{values: make([]Value, 0, 8)}
}

func (s *MsgpackSerializer) add(v Value) error {
	if s.finished {
		return errors.Closed(errors.PhaseSerialize, "serializer")
	}
	s.values = append(s.values, v)
	return nil
}

// SetMsg sets the message id written ahead of the arguments.
func (s *MsgpackSerializer) SetMsg(msg uint32) { s.msg = msg }

func (s *MsgpackSerializer) AddInt32(v int32) error    { return s.add(Int32Value(v)) }
func (s *MsgpackSerializer) AddInt64(v int64) error    { return s.add(Int64Value(v)) }
func (s *MsgpackSerializer) AddFloat(v float32) error  { return s.add(FloatValue(v)) }
func (s *MsgpackSerializer) AddDouble(v float64) error { return s.add(DoubleValue(v)) }
func (s *MsgpackSerializer) AddVoid() error            { return s.add(VoidValue()) }

// Add appends a STRING. chars is copied.
func (s *MsgpackSerializer) Add(chars []uint16) error {
	return s.add(Value{Type: TypeString, Chars: append([]uint16(nil), chars...)})
}

// AddJSON appends a JSONSTRING. chars is copied.
func (s *MsgpackSerializer) AddJSON(chars []uint16) error {
	return s.add(Value{Type: TypeJSONString, Chars: append([]uint16(nil), chars...)})
}

// AddBytes appends a BYTEARRAY. data is copied.
func (s *MsgpackSerializer) AddBytes(data []byte) error {
	return s.add(Value{Type: TypeByteArray, Bytes: append([]byte(nil), data...)})
}

// Values returns the values appended so far.
func (s *MsgpackSerializer) Values() []Value { return s.values }

// Finish encodes the collected values. The serializer cannot be reused.
func (s *MsgpackSerializer) Finish() (*Buffer, error) {
	if s.finished {
		return nil, errors.Closed(errors.PhaseSerialize, "serializer")
	}
	s.finished = true

	buf := encodeBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		if buf.Cap() <= maxPooledBufferCap {
			encodeBufPool.Put(buf)
		}
	}()

	if err := Encode(buf, s.msg, s.values); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return &Buffer{data: out}, nil
}

// Encode writes msg and values to w in the wire layout Decode reads.
func Encode(w *bytes.Buffer, msg uint32, values []Value) error {
	enc := msgpack.NewEncoder(w)

	if err := enc.EncodeArrayLen(2); err != nil {
		return wrapEncode(err)
	}
	if err := enc.EncodeUint32(msg); err != nil {
		return wrapEncode(err)
	}
	if err := enc.EncodeArrayLen(len(values)); err != nil {
		return wrapEncode(err)
	}
	for i, v := range values {
		if err := encodeValue(enc, v); err != nil {
			return errors.New(errors.PhaseSerialize, errors.KindInvalidData).
				Path("args", "["+strconv.Itoa(i)+"]").
				Cause(err).
				Build()
		}
	}
	return nil
}

func wrapEncode(err error) error {
	return errors.Wrap(errors.PhaseSerialize, errors.KindInvalidData, err, "encode header")
}

func encodeValue(enc *msgpack.Encoder, v Value) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeUint8(uint8(v.Type)); err != nil {
		return err
	}

	switch v.Type {
	case TypeInt32, TypeInt64:
		return enc.EncodeInt(v.I)
	case TypeFloat:
		return enc.EncodeFloat32(float32(v.F))
	case TypeDouble:
		return enc.EncodeFloat64(v.F)
	case TypeString, TypeJSONString:
		return enc.EncodeBytes(charsToBytes(v.Chars))
	case TypeByteArray:
		return enc.EncodeBytes(v.Bytes)
	case TypeVoid, TypeJSUndefined:
		return enc.EncodeNil()
	default:
		return errors.Unsupported(errors.PhaseSerialize, "argument type "+v.Type.String())
	}
}

// Decode parses a buffer produced by MsgpackSerializer.
func Decode(data []byte) (*ArgumentList, error) {
	r := bytes.NewReader(data)
	dec := msgpack.NewDecoder(r)

	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "read header")
	}
	if n != 2 {
		return nil, errors.InvalidData(errors.PhaseParse, nil, "header must have 2 elements, got "+strconv.Itoa(n))
	}
	msg, err := dec.DecodeUint32()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "read message id")
	}
	count, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "read argument count")
	}
	if count < 0 {
		count = 0
	}
	// each [type, payload] pair takes at least 3 bytes
	if count > r.Len()/minEncodedArg {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Value(count).
			Detail("header claims %d arguments but only %d bytes follow", count, r.Len()).
			Build()
	}

	values := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path("args", "["+strconv.Itoa(i)+"]").
				Cause(err).
				Build()
		}
		values = append(values, v)
	}
	if r.Len() > 0 {
		return nil, errors.InvalidData(errors.PhaseParse, nil, strconv.Itoa(r.Len())+" trailing bytes")
	}

	return &ArgumentList{values: values, msg: msg}, nil
}

func decodeValue(dec *msgpack.Decoder) (Value, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return Value{}, err
	}
	if n != 2 {
		return Value{}, errors.InvalidData(errors.PhaseParse, nil, "argument must be a [type, payload] pair")
	}
	tag, err := dec.DecodeUint8()
	if err != nil {
		return Value{}, err
	}

	v := Value{Type: Type(tag)}
	switch v.Type {
	case TypeInt32:
		i, err := dec.DecodeInt64()
		if err != nil {
			return Value{}, err
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return Value{}, errors.InvalidData(errors.PhaseParse, nil, "INT32 payload out of range")
		}
		v.I = i
	case TypeInt64:
		if v.I, err = dec.DecodeInt64(); err != nil {
			return Value{}, err
		}
	case TypeFloat:
		f, err := dec.DecodeFloat32()
		if err != nil {
			return Value{}, err
		}
		v.F = float64(f)
	case TypeDouble:
		if v.F, err = dec.DecodeFloat64(); err != nil {
			return Value{}, err
		}
	case TypeString, TypeJSONString:
		b, err := dec.DecodeBytes()
		if err != nil {
			return Value{}, err
		}
		if len(b)%2 != 0 {
			return Value{}, errors.InvalidData(errors.PhaseParse, nil, "UTF-16 payload has odd length")
		}
		v.Chars = bytesToChars(b)
	case TypeByteArray:
		b, err := dec.DecodeBytes()
		if err != nil {
			return Value{}, err
		}
		if b == nil {
			b = []byte{}
		}
		v.Bytes = b
	case TypeVoid, TypeJSUndefined:
		if err := dec.DecodeNil(); err != nil {
			return Value{}, err
		}
	default:
		return Value{}, errors.InvalidData(errors.PhaseParse, nil, "unknown argument type "+v.Type.String())
	}
	return v, nil
}

func charsToBytes(chars []uint16) []byte {
	out := make([]byte, len(chars)*2)
	for i, c := range chars {
		binary.LittleEndian.PutUint16(out[i*2:], c)
	}
	return out
}

func bytesToChars(b []byte) []uint16 {
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return out
}

var _ Serializer = (*MsgpackSerializer)(nil)
