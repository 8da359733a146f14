// Package resource provides the handle table behind the host runtime model.
//
// Managed objects (strings, byte arrays, classes) are never exposed directly;
// callers hold integer handles that refer to entries in a table. Handle 0 is the
// null reference.
//
// # Handle Table
//
// The UnifiedTable maps handles to Go values:
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	handle := table.Insert(typeID, value)
//
//	// Retrieve value by handle
//	value, ok := table.Get(handle)
//
//	// Remove and get value
//	value, ok := table.Remove(handle)
//
// # Type Safety
//
// Each entry records a type ID chosen by the caller, and GetTyped refuses
// handles whose entry has a different type:
//
//	value, ok := table.GetTyped(handle, StringTypeID)
//
// # Borrows
//
// A borrow pins an entry while a caller holds a view into it. Remove fails
// while any borrow is outstanding, so a released handle can never invalidate a
// live view:
//
//	table.Borrow(handle)
//	defer table.ReturnBorrow(handle)
//
// TotalBorrows reports how many pins are held across the table, which makes
// leaked borrows observable in tests.
//
// # Observers
//
// Observers receive created, dropped, borrowed and borrow-returned events.
//
// Entries are not garbage collected. The owner must Remove them explicitly,
// or Close the table to release everything at once.
package resource
