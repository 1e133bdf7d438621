package storage

type storageError string

// ErrNotFound is returned when a lookup matches no row.
const ErrNotFound = storageError("not found")

func (e storageError) Error() string {
	return string(e)
}
