// Package store provides the persistence interfaces used by the bot along
// with a leveldb implementation
package store

import (
	"io"
)

// StringStorer defines the interface of a simple string key/value store. It is
// a best-effort cache-aside store: callers keep their source of truth in
// memory and persist through this interface
type StringStorer interface {
	// GetString retrieves the value associated to the key
	GetString(key string) (value string, err error)

	// PutString adds or updates the value associated to the key
	PutString(key string, value string) (err error)

	// DeleteString deletes the entry for the given key
	DeleteString(key string) (err error)

	// Scan returns the complete set of key/values from the store
	Scan() (entries map[string]string, err error)

	io.Closer
}
