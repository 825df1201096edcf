package common

import (
	"escrowmarket/core/types"
)

// CallContext carries the read-only execution facts for one top-level call:
// who invoked it and at which block height. All fields are constant within a
// single invocation; the engine never consults a clock or any other ambient
// source.
type CallContext struct {
	Caller types.Address
	Height uint64
}
