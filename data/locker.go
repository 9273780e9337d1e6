package data

// Locker is an interface that allows locking and unlocking of the databases.
type Locker interface {
	// UsingState calls a callback with the network's state under its lock.
	// The returned boolean is whether or not the function was called.
	UsingState(network string, fn func(*State)) bool
	// UsingStore calls a callback if the store is enabled.
	// The returned boolean is whether or not the function was called.
	UsingStore(fn func(*Store)) bool
}
