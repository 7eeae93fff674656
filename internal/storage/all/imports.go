// Package all wires the built-in storage backends into the storage factory.
//
// It exists purely for side effects: a blank import runs each backend's init
// function, which registers its factory with the storage package. Binaries
// that want only a subset of backends can import the backend packages
// directly instead.
package all

import (
	_ "erpingest/internal/storage/postgres"
	_ "erpingest/internal/storage/sqlite"
)
