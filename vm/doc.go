// Package vm models the managed host runtime that the bridge talks to.
//
// Managed objects are only reachable through Ref handles and the accessor
// surface of Env, mirroring a JNI-style environment:
//
//	FindClass / GetMethodID / CallObjectMethod   - class and method lookup
//	NewStringUTF / NewString                     - string construction
//	GetStringChars / ReleaseStringChars          - UTF-16 borrow
//	GetStringUTFChars / ReleaseStringUTFChars    - UTF-8 borrow
//	NewByteArray / SetByteArrayRegion            - byte array construction
//	GetByteArrayElements / ReleaseByteArrayElements
//	DeleteLocalRef                               - drop a local reference
//
// Every Get* accessor pins its object until the matching Release*. A pinned
// object cannot be deleted, and Machine exposes the number of outstanding pins
// and live local references so callers can verify that they leave nothing
// behind.
//
// # Machine
//
// Machine is an in-memory Env built on the resource handle table. Strings are
// stored as UTF-16 code units; the UTF-8 view is standard UTF-8. The class
// java/lang/String provides getBytes()[B (UTF-8) and
// getBytes(Ljava/lang/String;)[B, which encodes through any charset known to
// golang.org/x/text. Characters the charset cannot represent become '?'.
//
// An Env belongs to one goroutine at a time, like the thread-local
// environment it models; Machine itself tolerates concurrent use.
package vm
