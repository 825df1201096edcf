package common

import "errors"

// ErrReentrancy reports that a mutating entry point was invoked while another
// one was still active in the same call frame.
var ErrReentrancy = errors.New("reentrant call rejected")

// ReentrancyGuard is a single-frame mutual-exclusion flag. Execution is
// sequential, so the only hazard is a nested call back into the module before
// the outer call finishes; the guard rejects that deterministically. The flag
// lives in per-call process state and is never persisted.
type ReentrancyGuard struct {
	held bool
}

// Enter acquires the guard and returns the release function, or
// ErrReentrancy when the guard is already held. The release function must be
// invoked on every exit path, including early error returns:
//
//	release, err := guard.Enter()
//	if err != nil {
//	        return err
//	}
//	defer release()
func (g *ReentrancyGuard) Enter() (func(), error) {
	if g == nil {
		return func() {}, nil
	}
	if g.held {
		return nil, ErrReentrancy
	}
	g.held = true
	return func() { g.held = false }, nil
}

// Held reports whether the guard is currently taken.
func (g *ReentrancyGuard) Held() bool {
	return g != nil && g.held
}
