// Package hostbridge marshals text and bytes between a managed runtime and a
// native tagged-argument protocol.
//
// A host that embeds a managed runtime (strings, byte arrays and object handles
// reachable only through an accessor surface) often forwards calls over an IPC
// channel whose arguments are tagged unions. This module is the conversion layer
// between the two: it decodes managed strings into native text, builds managed
// values from native text, pulls typed values out of argument lists, and appends
// managed strings to a serializer, without leaking borrowed views or temporary
// references.
//
// # Architecture Overview
//
//	hostbridge/          Root package with core Memory and Allocator interfaces
//	├── bridge/          Conversion, extraction and serializer functions
//	├── vm/              Managed runtime accessor surface and in-memory Machine
//	├── ipc/             Tagged argument list, serializer and MessagePack codec
//	├── native/          Native heaps (Go and wazero linear memory) and owned buffers
//	├── resource/        Handle table with borrow accounting
//	├── errors/          Structured error types for debugging
//	└── cmd/argtool/     Build and inspect encoded argument lists
//
// # Quick Start
//
// Extract arguments and hand a string back to the runtime:
//
//	m := vm.NewMachine()
//	defer m.Close()
//
//	args, err := ipc.Decode(payload)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	n, ok := bridge.ArgumentAsInt32(args, 1)
//	s, err := bridge.ArgumentAsManagedString(m, args, 2)
//	defer m.DeleteLocalRef(s)
//
// Serialize a reply:
//
//	ser := ipc.NewMsgpackSerializer()
//	if err := bridge.AddJSONString(m, ser, s); err != nil {
//	    log.Fatal(err)
//	}
//	buf, err := ser.Finish()
//
// # Ownership
//
// Functions never keep a borrowed view past their return. Native buffers
// returned by the extractors belong to the caller and must be released; managed
// references returned belong to the caller and must be deleted.
//
// # Thread Safety
//
// The bridge functions keep no state and are safe to call concurrently as long
// as the runtime environment passed in allows it. vm.Machine is safe for
// concurrent use; ipc.MsgpackSerializer is not.
package hostbridge
