package resource

// Handle is an opaque reference to an entry in a table.
// Handle 0 is reserved and always invalid; it models the host runtime's null reference.
type Handle uint32

// EventType identifies a lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
	EventBorrowed
	EventBorrowReturned
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	case EventBorrowed:
		return "borrowed"
	case EventBorrowReturned:
		return "borrow-returned"
	default:
		return "unknown"
	}
}

// Event represents a lifecycle event for one handle.
type Event struct {
	Value  any
	Handle Handle
	TypeID uint32
	Type   EventType
}

// Observer receives notifications about lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Backend provides the underlying storage for handles.
type Backend interface {
	// Create stores a value and returns a handle.
	Create(typeID uint32, value any) (Handle, error)

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// Drop removes an entry and returns (value, true).
	// Returns (nil, false) if the handle is invalid or has outstanding borrows.
	Drop(handle Handle) (any, bool)

	// Close releases all entries held by the backend.
	Close() error
}

// BorrowBackend extends Backend with borrow accounting.
// A borrow pins an entry: it cannot be dropped until every borrow is returned.
type BorrowBackend interface {
	Backend

	// Borrow increments the borrow count for a handle.
	Borrow(handle Handle) bool

	// ReturnBorrow decrements the borrow count for a handle.
	ReturnBorrow(handle Handle) bool

	// Borrows returns the current borrow count for a handle.
	Borrows(handle Handle) (uint32, bool)
}

// Table manages typed handles with observer support.
type Table interface {
	// Insert adds a value and returns its handle.
	Insert(typeID uint32, value any) Handle

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// GetTyped retrieves a value only if it matches the expected type.
	GetTyped(handle Handle, typeID uint32) (any, bool)

	// Remove drops an entry and returns (value, true) if found.
	Remove(handle Handle) (any, bool)

	// Borrow pins a handle; every successful Borrow needs a ReturnBorrow.
	Borrow(handle Handle) bool

	// ReturnBorrow releases one pin taken by Borrow.
	ReturnBorrow(handle Handle) bool

	// Subscribe adds an observer for lifecycle events.
	Subscribe(Observer)

	// Unsubscribe removes an observer.
	Unsubscribe(Observer)

	// Len returns the number of live entries.
	Len() int

	// Clear drops all entries without outstanding borrows.
	Clear()

	// Close releases all entries and stops accepting operations.
	Close() error
}

// Dropper is optionally implemented by values that need cleanup.
type Dropper interface {
	Drop()
}
