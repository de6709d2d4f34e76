package storage

import "errors"

// ErrUnknownStorageItem is returned when an address is requested for a
// storage item the hasher table does not declare.
var ErrUnknownStorageItem = errors.New("storage: unknown storage item")
