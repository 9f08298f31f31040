package fyf

import "errors"

// Domain errors raised by the service layer. Callers match them with
// errors.Is; infrastructure failures (store, cache, object storage) are
// propagated as-is and never translated into this set.
var (
	ErrEntryNotFound   = errors.New("entry not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionTooLong  = errors.New("session lifetime exceeds configured maximum")
	ErrNotAuthor       = errors.New("only the author may change entry permissions")
	ErrParentCycle     = errors.New("parent change would create a cycle")
	ErrUsernameTaken   = errors.New("username already taken")
)
