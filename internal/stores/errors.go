package stores

import "errors"

var (
	ErrStoreNotFound = errors.New("store not found")
	ErrEmailExists   = errors.New("store with this email already exists")
	ErrOwnerNotFound = errors.New("owner not found")
)
