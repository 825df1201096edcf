package rpc

import (
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"escrowmarket/core/events"
	"escrowmarket/core/types"
	nativecommon "escrowmarket/native/common"
	"escrowmarket/native/escrow"
	"escrowmarket/native/token"
	"escrowmarket/observability"
)

// Server exposes the marketplace call surface over JSON-RPC 2.0. Every
// request resolves its execution context (caller, block height) once and
// hands it to the engine; the engine never reads anything ambient.
type Server struct {
	engine   *escrow.Engine
	ledger   *token.Ledger
	faucet   *token.Faucet
	recorder *events.Recorder
	metrics  *observability.EngineMetrics
	logger   *slog.Logger
	height   atomic.Uint64
	router   chi.Router
}

// NewServer wires the RPC surface over the supplied engine and token module.
// recorder may be nil when event history is not exposed.
func NewServer(engine *escrow.Engine, ledger *token.Ledger, faucet *token.Faucet, recorder *events.Recorder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:   engine,
		ledger:   ledger,
		faucet:   faucet,
		recorder: recorder,
		metrics:  observability.Metrics(),
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Post("/rpc", s.handleRPC)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Height returns the current block height register.
func (s *Server) Height() uint64 { return s.height.Load() }

// SetHeight initialises the block height register, typically from persisted
// daemon state.
func (s *Server) SetHeight(h uint64) { s.height.Store(h) }

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

type callerParams struct {
	From string `json:"from"`
}

type orderIDParams struct {
	From    string `json:"from"`
	OrderID uint64 `json:"orderId"`
}

type createOrderParams struct {
	From           string `json:"from"`
	Price          string `json:"price"`
	DeadlineOffset uint64 `json:"deadlineOffset"`
}

type listEventsParams struct {
	Prefix string `json:"prefix,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type advanceHeightParams struct {
	Blocks uint64 `json:"blocks,omitempty"`
}

type balanceOfParams struct {
	Address string `json:"address"`
}

type transferParams struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// OrderResult is the wire form of a stored order.
type OrderResult struct {
	ID         uint64 `json:"id"`
	Seller     string `json:"seller"`
	Buyer      string `json:"buyer,omitempty"`
	Price      string `json:"price"`
	Locked     string `json:"locked"`
	State      string `json:"state"`
	Deadline   uint64 `json:"deadline"`
	AcceptedAt uint64 `json:"acceptedAt,omitempty"`
}

// StatsResult is the wire form of the global escrow view.
type StatsResult struct {
	ContractBalance string `json:"contractBalance"`
	TotalLocked     string `json:"totalLocked"`
	OrderCount      uint64 `json:"orderCount"`
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, http.StatusBadRequest, rpcResponse{
			JSONRPC: "2.0",
			Error:   &Error{Code: codeParseError, Message: "invalid JSON-RPC payload", Data: err.Error()},
		})
		return
	}
	name := strings.TrimSpace(req.Method)
	if name == "" {
		writeResponse(w, http.StatusBadRequest, rpcResponse{
			JSONRPC: "2.0", ID: req.ID,
			Error: &Error{Code: codeInvalidRequest, Message: "method is required"},
		})
		return
	}

	started := time.Now()
	result, rpcErr, status := s.dispatch(name, req.Params)
	outcome := "ok"
	if rpcErr != nil {
		outcome = "error"
		if rpcErr.Code == codeCriticalInvariant {
			s.metrics.RecordInvariantViolation()
			s.logger.Error("solvency invariant violation reported", "method", name)
		}
	}
	s.metrics.ObserveRequest(name, outcome, time.Since(started))

	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr}
	writeResponse(w, status, resp)
}

// dispatch decodes the method name into the closed operation enum and invokes
// the matching engine entry point. Unknown names route to the token module
// before failing method-not-found.
func (s *Server) dispatch(name string, params json.RawMessage) (any, *Error, int) {
	m, ok := parseMethod(name)
	if !ok {
		return s.dispatchToken(name, params)
	}
	switch m {
	case methodCreateOrder:
		return s.createOrder(params)
	case methodAcceptOrder:
		return s.mutateByID(params, s.engine.AcceptOrder)
	case methodFundOrder:
		return s.mutateByID(params, s.engine.FundOrder)
	case methodConfirmCompletion:
		return s.mutateByID(params, s.engine.ConfirmCompletion)
	case methodCancelOrder:
		return s.mutateByID(params, s.engine.CancelOrder)
	case methodOpenDispute:
		return s.mutateByID(params, s.engine.OpenDispute)
	case methodSweepExcess:
		return s.sweepExcess(params)
	case methodGetOrder:
		return s.getOrder(params)
	case methodGetEscrowStats:
		return s.getEscrowStats()
	case methodListEvents:
		return s.listEvents(params)
	case methodAdvanceHeight:
		return s.advanceHeight(params)
	default:
		return nil, &Error{Code: codeMethodNotFound, Message: "method not found: " + name}, http.StatusNotFound
	}
}

func (s *Server) dispatchToken(name string, params json.RawMessage) (any, *Error, int) {
	m, ok := parseTokenMethod(name)
	if !ok {
		return nil, &Error{Code: codeMethodNotFound, Message: "method not found: " + name}, http.StatusNotFound
	}
	switch m {
	case tokenMethodBalanceOf:
		var p balanceOfParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, invalidParams(err), http.StatusBadRequest
		}
		addr, err := types.ParseAddress(p.Address)
		if err != nil {
			return nil, invalidParams(err), http.StatusBadRequest
		}
		balance, err := s.ledger.BalanceOf(addr)
		if err != nil {
			rpcErr, status := translateError(err)
			return nil, rpcErr, status
		}
		return map[string]string{"balance": balance.String()}, nil, http.StatusOK
	case tokenMethodTotalSupply:
		supply, err := s.ledger.TotalSupply()
		if err != nil {
			rpcErr, status := translateError(err)
			return nil, rpcErr, status
		}
		return map[string]string{"totalSupply": supply.String()}, nil, http.StatusOK
	case tokenMethodTransfer:
		var p transferParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, invalidParams(err), http.StatusBadRequest
		}
		from, err := types.ParseAddress(p.From)
		if err != nil {
			return nil, invalidParams(err), http.StatusBadRequest
		}
		to, err := types.ParseAddress(p.To)
		if err != nil {
			return nil, invalidParams(err), http.StatusBadRequest
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(p.Amount), 10)
		if !ok {
			return nil, &Error{Code: codeInvalidParams, Message: "amount must be a base-10 integer"}, http.StatusBadRequest
		}
		if err := s.ledger.Transfer(from, to, amount); err != nil {
			rpcErr, status := translateError(err)
			return nil, rpcErr, status
		}
		return true, nil, http.StatusOK
	case tokenMethodFaucetClaim:
		var p callerParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, invalidParams(err), http.StatusBadRequest
		}
		ctx, rpcErr := s.callContext(p.From)
		if rpcErr != nil {
			return nil, rpcErr, http.StatusBadRequest
		}
		dripped, err := s.faucet.Claim(ctx)
		if err != nil {
			rpcErr, status := translateError(err)
			return nil, rpcErr, status
		}
		return map[string]string{"amount": dripped.String()}, nil, http.StatusOK
	default:
		return nil, &Error{Code: codeMethodNotFound, Message: "method not found: " + name}, http.StatusNotFound
	}
}

func (s *Server) callContext(from string) (nativecommon.CallContext, *Error) {
	addr, err := types.ParseAddress(from)
	if err != nil {
		return nativecommon.CallContext{}, invalidParams(err)
	}
	return nativecommon.CallContext{Caller: addr, Height: s.height.Load()}, nil
}

func (s *Server) createOrder(params json.RawMessage) (any, *Error, int) {
	var p createOrderParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err), http.StatusBadRequest
	}
	ctx, rpcErr := s.callContext(p.From)
	if rpcErr != nil {
		return nil, rpcErr, http.StatusBadRequest
	}
	price, ok := new(big.Int).SetString(strings.TrimSpace(p.Price), 10)
	if !ok {
		return nil, &Error{Code: codeInvalidParams, Message: "price must be a base-10 integer"}, http.StatusBadRequest
	}
	id, err := s.engine.CreateOrder(ctx, price, p.DeadlineOffset)
	if err != nil {
		rpcErr, status := translateError(err)
		return nil, rpcErr, status
	}
	return map[string]uint64{"orderId": id}, nil, http.StatusOK
}

func (s *Server) mutateByID(params json.RawMessage, op func(nativecommon.CallContext, uint64) error) (any, *Error, int) {
	var p orderIDParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err), http.StatusBadRequest
	}
	ctx, rpcErr := s.callContext(p.From)
	if rpcErr != nil {
		return nil, rpcErr, http.StatusBadRequest
	}
	if err := op(ctx, p.OrderID); err != nil {
		rpcErr, status := translateError(err)
		return nil, rpcErr, status
	}
	return true, nil, http.StatusOK
}

func (s *Server) sweepExcess(params json.RawMessage) (any, *Error, int) {
	var p callerParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err), http.StatusBadRequest
	}
	ctx, rpcErr := s.callContext(p.From)
	if rpcErr != nil {
		return nil, rpcErr, http.StatusBadRequest
	}
	surplus, err := s.engine.SweepExcess(ctx)
	if err != nil {
		rpcErr, status := translateError(err)
		return nil, rpcErr, status
	}
	return map[string]string{"swept": surplus.String()}, nil, http.StatusOK
}

func (s *Server) getOrder(params json.RawMessage) (any, *Error, int) {
	var p orderIDParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err), http.StatusBadRequest
	}
	order, err := s.engine.GetOrder(p.OrderID)
	if err != nil {
		rpcErr, status := translateError(err)
		return nil, rpcErr, status
	}
	return formatOrder(order), nil, http.StatusOK
}

func (s *Server) getEscrowStats() (any, *Error, int) {
	stats, err := s.engine.EscrowStats()
	if err != nil {
		rpcErr, status := translateError(err)
		return nil, rpcErr, status
	}
	return StatsResult{
		ContractBalance: stats.ContractBalance.String(),
		TotalLocked:     stats.TotalLocked.String(),
		OrderCount:      stats.OrderCount,
	}, nil, http.StatusOK
}

func (s *Server) listEvents(params json.RawMessage) (any, *Error, int) {
	if s.recorder == nil {
		return []events.Entry{}, nil, http.StatusOK
	}
	var p listEventsParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, invalidParams(err), http.StatusBadRequest
		}
	}
	return s.recorder.List(p.Prefix, p.Limit), nil, http.StatusOK
}

func (s *Server) advanceHeight(params json.RawMessage) (any, *Error, int) {
	var p advanceHeightParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, invalidParams(err), http.StatusBadRequest
		}
	}
	blocks := p.Blocks
	if blocks == 0 {
		blocks = 1
	}
	next := s.height.Add(blocks)
	return map[string]uint64{"height": next}, nil, http.StatusOK
}

func formatOrder(order *escrow.Order) OrderResult {
	result := OrderResult{
		ID:         order.ID,
		Seller:     order.Seller.Hex(),
		Price:      order.Price.String(),
		Locked:     order.Locked.String(),
		State:      order.State.String(),
		Deadline:   order.Deadline,
		AcceptedAt: order.AcceptedAt,
	}
	if !order.Buyer.IsZero() {
		result.Buyer = order.Buyer.Hex()
	}
	return result
}

func invalidParams(err error) *Error {
	return &Error{Code: codeInvalidParams, Message: "invalid parameter object", Data: err.Error()}
}

func writeResponse(w http.ResponseWriter, status int, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Default().Error("encode rpc response", "error", err)
	}
}
