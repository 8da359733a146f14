// Package ipc provides the native argument protocol consumed by the bridge.
//
// An argument list is an ordered, fixed-length sequence of tagged values:
//
//	Type          Payload
//	──────────────────────────────────────────
//	INT32         int32
//	INT64         int64
//	FLOAT         float32
//	DOUBLE        float64
//	JSONSTRING    UTF-16 code units (structured text)
//	STRING        UTF-16 code units
//	BYTEARRAY     length-prefixed bytes, not NUL-terminated
//	VOID          none
//	JSUNDEFINED   none
//
// Arguments exposes the list read-only. Typed getters return the zero value
// when the tag does not match; out-of-range indices report TypeEnd.
//
// A Serializer appends values in call order and Finish produces a Buffer. The
// MsgpackSerializer encodes the message id followed by an array of
// [type, payload] pairs with MessagePack; Decode reverses it.
package ipc
