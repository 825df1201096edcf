package escrow

import "math"

// Params carries the protocol constants that shape every timeout window. All
// values are block counts.
type Params struct {
	// MinListingWindow is the smallest deadline offset accepted at order
	// creation.
	MinListingWindow uint64
	// AcceptTimeout bounds the window between acceptance and funding.
	AcceptTimeout uint64
	// DisputeTimeout is the cooling-off period after the listing deadline
	// before a disputed order becomes refundable.
	DisputeTimeout uint64
}

// DefaultParams returns the protocol defaults used when no configuration
// overrides them.
func DefaultParams() Params {
	return Params{
		MinListingWindow: 10,
		AcceptTimeout:    100,
		DisputeTimeout:   1000,
	}
}

// saturatingAdd adds two heights, clamping at the maximum representable value
// so an overflow yields "never expires" rather than a spuriously early one.
func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// ListingDeadline computes the absolute height at which the listing lapses.
func (p Params) ListingDeadline(createdAt, offset uint64) uint64 {
	return saturatingAdd(createdAt, offset)
}

// ListingExpired reports whether the listing deadline has passed at the given
// height.
func (p Params) ListingExpired(deadline, height uint64) bool {
	return height > deadline
}

// FundingDeadline computes the last height at which an accepted order may be
// funded.
func (p Params) FundingDeadline(acceptedAt uint64) uint64 {
	return saturatingAdd(acceptedAt, p.AcceptTimeout)
}

// FundingWindowOpen reports whether an accepted order can still be funded.
func (p Params) FundingWindowOpen(acceptedAt, height uint64) bool {
	return height <= p.FundingDeadline(acceptedAt)
}

// DisputeRefundHeight computes the height after which a disputed order's
// buyer may force a refund.
func (p Params) DisputeRefundHeight(deadline uint64) uint64 {
	return saturatingAdd(deadline, p.DisputeTimeout)
}

// DisputeRefundable reports whether the dispute cooling-off period has
// elapsed.
func (p Params) DisputeRefundable(deadline, height uint64) bool {
	return height > p.DisputeRefundHeight(deadline)
}
