package rpc

// method is the closed set of marketplace operations. Method strings decode
// into it up front; dispatch then switches exhaustively. Names outside the
// set fall through to the token module before failing method-not-found.
type method int

const (
	methodUnknown method = iota
	methodCreateOrder
	methodAcceptOrder
	methodFundOrder
	methodConfirmCompletion
	methodCancelOrder
	methodOpenDispute
	methodSweepExcess
	methodGetOrder
	methodGetEscrowStats
	methodListEvents
	methodAdvanceHeight
)

var methodNames = map[string]method{
	"createOrder":       methodCreateOrder,
	"acceptOrder":       methodAcceptOrder,
	"fundOrder":         methodFundOrder,
	"confirmCompletion": methodConfirmCompletion,
	"cancelOrder":       methodCancelOrder,
	"openDispute":       methodOpenDispute,
	"sweepExcess":       methodSweepExcess,
	"getOrder":          methodGetOrder,
	"getEscrowStats":    methodGetEscrowStats,
	"listEvents":        methodListEvents,
	"dev_advanceHeight": methodAdvanceHeight,
}

func parseMethod(name string) (method, bool) {
	m, ok := methodNames[name]
	return m, ok
}

// tokenMethod is the fallback surface for names the marketplace enum does not
// recognise.
type tokenMethod int

const (
	tokenMethodUnknown tokenMethod = iota
	tokenMethodBalanceOf
	tokenMethodTotalSupply
	tokenMethodTransfer
	tokenMethodFaucetClaim
)

var tokenMethodNames = map[string]tokenMethod{
	"token_balanceOf":   tokenMethodBalanceOf,
	"token_totalSupply": tokenMethodTotalSupply,
	"token_transfer":    tokenMethodTransfer,
	"token_faucetClaim": tokenMethodFaucetClaim,
}

func parseTokenMethod(name string) (tokenMethod, bool) {
	m, ok := tokenMethodNames[name]
	return m, ok
}
