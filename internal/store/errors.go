package store

import "errors"

// ErrEntityHasID reports an insert of an entity that already carries a
// store-assigned id. This is a contract violation by the caller, never a
// runtime condition to retry.
var ErrEntityHasID = errors.New("entity already has an id")

// ErrNotFound reports a lookup for a row that does not exist when the caller
// required one.
var ErrNotFound = errors.New("not found")

// ErrUnknownContentType reports a content type outside the fixed enumeration.
var ErrUnknownContentType = errors.New("unknown content type")
