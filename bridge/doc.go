// Package bridge converts text and bytes between a managed runtime and the
// native argument protocol.
//
// Every function takes the runtime environment explicitly and keeps no state
// between calls. Borrowed views of managed objects (string characters, array
// elements) and temporary local references are released before the function
// returns, on every path. Values returned to the caller are self-contained:
// Go strings, owned native buffers, or fresh local references the caller must
// delete.
//
// # Decoding
//
// DecodeString re-encodes a managed string through a named charset and returns
// the raw bytes:
//
//	raw, err := bridge.DecodeString(env, s, bridge.LegacyCharset)
//
// DecodeStringFast takes the runtime's UTF-8 view instead.
//
// # Extraction
//
// The ArgumentAs* functions read one tagged argument. An index out of range or
// a tag mismatch yields the absent value (nil buffer, Null ref, ok == false);
// errors are reserved for runtime and heap failures.
//
//	n, ok := bridge.ArgumentAsInt32(args, 1)
//	text, err := bridge.ArgumentAsText(heap, args, 0) // text == nil when absent
//	defer text.Release()
//
// # Serializing
//
// AddString and AddJSONString borrow the characters of a managed string for
// the duration of one serializer append. WithStringChars and ScopedString
// expose the same scoped borrow to callers.
package bridge
