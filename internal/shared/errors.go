package shared

import "errors"

// ErrInvalidCredentials indicates login failure. Lookup misses and password
// mismatches collapse into it so responses never reveal which one happened.
var ErrInvalidCredentials = errors.New("invalid credentials")
