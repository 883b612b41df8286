package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/ChainSafe/utopia-relay/relayer/bridge"
	"github.com/ChainSafe/utopia-relay/relayer/limits"
	"github.com/ChainSafe/utopia-relay/relayer/message"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Class string `json:"class"`
}

type DepositRequest struct {
	Sender    common.Address        `json:"sender"`
	Recipient common.Address        `json:"recipient"`
	Value     *math.HexOrDecimal256 `json:"value"`
	Deadline  uint64                `json:"deadline"`
	Signature hexutil.Bytes         `json:"signature"`
}

type SignatureRequest struct {
	Signer    common.Address `json:"signer"`
	Signature hexutil.Bytes  `json:"signature"`
	Message   hexutil.Bytes  `json:"message"`
}

type AffirmationRequest struct {
	Signer    common.Address        `json:"signer"`
	Recipient common.Address        `json:"recipient"`
	Value     *math.HexOrDecimal256 `json:"value"`
	TxHash    common.Hash           `json:"txHash"`
	Signature hexutil.Bytes         `json:"signature"`
}

type ExecutionRequest struct {
	Message    hexutil.Bytes `json:"message"`
	Signatures hexutil.Bytes `json:"signatures"`
}

type BridgedTokensRequest struct {
	Caller    common.Address        `json:"caller"`
	MessageID common.Hash           `json:"messageId"`
	Recipient common.Address        `json:"recipient"`
	Value     *math.HexOrDecimal256 `json:"value"`
	Signature hexutil.Bytes         `json:"signature"`
}

type FixRequest struct {
	MessageID  common.Hash   `json:"messageId"`
	Signatures hexutil.Bytes `json:"signatures"`
}

type ValidatorSetRequest struct {
	Root       common.Hash   `json:"root"`
	Threshold  uint64        `json:"threshold"`
	Expiration uint64        `json:"expiration"`
	Signatures hexutil.Bytes `json:"signatures"`
}

type CommitRequest struct {
	Sender    common.Address        `json:"sender"`
	MessageID common.Hash           `json:"messageId"`
	Executor  common.Address        `json:"executor"`
	Data      hexutil.Bytes         `json:"data"`
	Bond      *math.HexOrDecimal256 `json:"bond"`
	Deadline  uint64                `json:"deadline"`
	Signature hexutil.Bytes         `json:"signature"`
}

type ExecuteRequest struct {
	Gas uint64 `json:"gas"`
}

type RejectRequest struct {
	Validator common.Address `json:"validator"`
	Proof     []common.Hash  `json:"proof"`
	Signature hexutil.Bytes  `json:"signature"`
}

type MessageIDResponse struct {
	MessageID common.Hash `json:"messageId"`
}

type ModeResponse struct {
	Mode    string         `json:"mode"`
	Address common.Address `json:"address"`
}

type MessageStatusResponse struct {
	Relayed    bool  `json:"relayed"`
	Fixed      bool  `json:"fixed"`
	CallStatus *bool `json:"callStatus,omitempty"`
}

type SignedMessageResponse struct {
	Message    hexutil.Bytes   `json:"message"`
	Signatures []hexutil.Bytes `json:"signatures"`
	Collected  bool            `json:"collected"`
}

type DepositResponse struct {
	Sender    common.Address `json:"sender"`
	Recipient common.Address `json:"recipient"`
	Value     *hexutil.Big   `json:"value"`
}

type CommitResponse struct {
	Sender    common.Address `json:"sender"`
	Executor  common.Address `json:"executor"`
	Bond      *hexutil.Big   `json:"bond"`
	Data      hexutil.Bytes  `json:"data"`
	Timestamp uint64         `json:"timestamp"`
}

type ExecuteResponse struct {
	Status bool `json:"status"`
}

type LimitsResponse struct {
	Direction  string       `json:"direction"`
	DailyLimit *hexutil.Big `json:"dailyLimit"`
	MaxPerTx   *hexutil.Big `json:"maxPerTx"`
	MinPerTx   *hexutil.Big `json:"minPerTx"`
	Day        uint64       `json:"day"`
	TotalToday *hexutil.Big `json:"totalToday"`
}

var statusByClass = map[bridge.ErrorClass]int{
	bridge.ValidationError:    http.StatusBadRequest,
	bridge.AuthorizationError: http.StatusForbidden,
	bridge.IdempotencyError:   http.StatusConflict,
	bridge.LimitError:         http.StatusTooManyRequests,
	bridge.NotFoundError:      http.StatusNotFound,
	bridge.PreconditionError:  http.StatusTooEarly,
	bridge.EffectError:        http.StatusUnprocessableEntity,
	bridge.InternalError:      http.StatusInternalServerError,
}

// Handler exposes the bridge entry points over HTTP.
type Handler struct {
	bridge *bridge.Bridge
	guard  *requestGuard
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/mode", h.handleMode).Methods(http.MethodGet)
	r.HandleFunc("/deposits", h.handleDeposit).Methods(http.MethodPost)
	r.HandleFunc("/deposits/{id}", h.handleGetDeposit).Methods(http.MethodGet)
	r.HandleFunc("/signatures", h.handleSubmitSignature).Methods(http.MethodPost)
	r.HandleFunc("/signatures/{hash}", h.handleGetSignedMessage).Methods(http.MethodGet)
	r.HandleFunc("/affirmations", h.handleAffirmation).Methods(http.MethodPost)
	r.HandleFunc("/executions", h.handleExecution).Methods(http.MethodPost)
	r.HandleFunc("/bridged", h.handleBridgedTokens).Methods(http.MethodPost)
	r.HandleFunc("/fixes", h.handleFix).Methods(http.MethodPost)
	r.HandleFunc("/validator-set", h.handleValidatorSet).Methods(http.MethodPost)
	r.HandleFunc("/commits", h.handleCommit).Methods(http.MethodPost)
	r.HandleFunc("/commits/{id}", h.handleGetCommit).Methods(http.MethodGet)
	r.HandleFunc("/commits/{id}/execute", h.handleExecute).Methods(http.MethodPost)
	r.HandleFunc("/commits/{id}/reject", h.handleReject).Methods(http.MethodPost)
	r.HandleFunc("/messages/{id}", h.handleMessageStatus).Methods(http.MethodGet)
	r.HandleFunc("/limits/{direction}", h.handleLimits).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("Failed writing response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	class := bridge.Classify(err)
	switch {
	case errors.Is(err, ErrRequestReplayed):
		class = bridge.IdempotencyError
	case errors.Is(err, ErrRequestExpired), errors.Is(err, ErrUnauthenticated):
		class = bridge.AuthorizationError
	case errors.Is(err, ErrDeadlineTooFar):
		class = bridge.ValidationError
	}
	writeJSON(w, statusByClass[class], ErrorResponse{Error: err.Error(), Class: string(class)})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Class: string(bridge.ValidationError)})
}

func decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func hashVar(w http.ResponseWriter, r *http.Request, name string) (common.Hash, bool) {
	raw := mux.Vars(r)[name]
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != common.HashLength {
		writeBadRequest(w, fmt.Errorf("invalid %s %q", name, raw))
		return common.Hash{}, false
	}
	return common.BytesToHash(b), true
}

func bigValue(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return (*big.Int)(v)
}

func requireValue(w http.ResponseWriter, v *math.HexOrDecimal256, name string) (*big.Int, bool) {
	if v == nil {
		writeBadRequest(w, fmt.Errorf("missing %s", name))
		return nil, false
	}
	return bigValue(v), true
}

func (h *Handler) handleMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ModeResponse{
		Mode:    h.bridge.Mode().String(),
		Address: h.bridge.Config().Address,
	})
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if !decode(w, r, &req) {
		return
	}
	value, ok := requireValue(w, req.Value, "value")
	if !ok {
		return
	}
	hash := DepositRequestHash(h.bridge.Config().Address, req.Recipient, value, req.Deadline)
	if err := h.guard.once(hash, req.Signature, req.Sender, req.Deadline); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.bridge.RelayTokens(r.Context(), req.Sender, req.Recipient, value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageIDResponse{MessageID: id})
}

func (h *Handler) handleGetDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := hashVar(w, r, "id")
	if !ok {
		return
	}
	d, err := h.bridge.Deposit(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DepositResponse{
		Sender:    d.Sender,
		Recipient: d.Recipient,
		Value:     (*hexutil.Big)(d.Value),
	})
}

func (h *Handler) handleSubmitSignature(w http.ResponseWriter, r *http.Request) {
	var req SignatureRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.bridge.SubmitSignature(req.Signer, req.Signature, req.Message); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, MessageIDResponse{MessageID: message.SigningHash(req.Message)})
}

func (h *Handler) handleGetSignedMessage(w http.ResponseWriter, r *http.Request) {
	hash, ok := hashVar(w, r, "hash")
	if !ok {
		return
	}
	signed, err := h.bridge.SignedMessage(hash)
	if err != nil {
		writeError(w, err)
		return
	}
	sigs := make([]hexutil.Bytes, len(signed.Signatures))
	for i, sig := range signed.Signatures {
		sigs[i] = sig
	}
	writeJSON(w, http.StatusOK, SignedMessageResponse{
		Message:    signed.Message,
		Signatures: sigs,
		Collected:  signed.Collected,
	})
}

func (h *Handler) handleAffirmation(w http.ResponseWriter, r *http.Request) {
	var req AffirmationRequest
	if !decode(w, r, &req) {
		return
	}
	value, ok := requireValue(w, req.Value, "value")
	if !ok {
		return
	}
	if err := h.guard.authenticate(AffirmationRequestHash(req.Recipient, value, req.TxHash), req.Signature, req.Signer); err != nil {
		writeError(w, err)
		return
	}

	if err := h.bridge.ExecuteAffirmation(r.Context(), req.Signer, req.Recipient, value, req.TxHash); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, MessageIDResponse{MessageID: req.TxHash})
}

func (h *Handler) handleExecution(w http.ResponseWriter, r *http.Request) {
	var req ExecutionRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.bridge.ExecuteSignatures(r.Context(), req.Message, req.Signatures)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageIDResponse{MessageID: id})
}

func (h *Handler) handleBridgedTokens(w http.ResponseWriter, r *http.Request) {
	var req BridgedTokensRequest
	if !decode(w, r, &req) {
		return
	}
	value, ok := requireValue(w, req.Value, "value")
	if !ok {
		return
	}
	if err := h.guard.authenticate(AffirmationRequestHash(req.Recipient, value, req.MessageID), req.Signature, req.Caller); err != nil {
		writeError(w, err)
		return
	}

	if err := h.bridge.HandleBridgedTokens(r.Context(), req.Caller, req.MessageID, req.Recipient, value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageIDResponse{MessageID: req.MessageID})
}

func (h *Handler) handleFix(w http.ResponseWriter, r *http.Request) {
	var req FixRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.bridge.FixFailedMessage(r.Context(), req.MessageID, req.Signatures); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageIDResponse{MessageID: req.MessageID})
}

func (h *Handler) handleValidatorSet(w http.ResponseWriter, r *http.Request) {
	var req ValidatorSetRequest
	if !decode(w, r, &req) {
		return
	}
	update := message.ValidatorSetUpdate{
		Root:       req.Root,
		Threshold:  req.Threshold,
		Expiration: req.Expiration,
	}
	if err := h.bridge.UpdateValidatorSet(update, req.Signatures); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if !decode(w, r, &req) {
		return
	}
	bond, ok := requireValue(w, req.Bond, "bond")
	if !ok {
		return
	}
	hash := CommitRequestHash(h.bridge.Config().Address, req.MessageID, req.Executor, req.Data, bond, req.Deadline)
	if err := h.guard.once(hash, req.Signature, req.Sender, req.Deadline); err != nil {
		writeError(w, err)
		return
	}

	if err := h.bridge.Commit(r.Context(), req.Sender, req.MessageID, req.Executor, req.Data, bond); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageIDResponse{MessageID: req.MessageID})
}

func (h *Handler) handleGetCommit(w http.ResponseWriter, r *http.Request) {
	id, ok := hashVar(w, r, "id")
	if !ok {
		return
	}
	c, err := h.bridge.GetCommit(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CommitResponse{
		Sender:    c.Sender,
		Executor:  c.Executor,
		Bond:      (*hexutil.Big)(c.Bond),
		Data:      c.Data,
		Timestamp: c.Timestamp,
	})
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	id, ok := hashVar(w, r, "id")
	if !ok {
		return
	}
	var req ExecuteRequest
	if !decode(w, r, &req) {
		return
	}
	status, err := h.bridge.Execute(r.Context(), id, req.Gas)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExecuteResponse{Status: status})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	id, ok := hashVar(w, r, "id")
	if !ok {
		return
	}
	var req RejectRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.bridge.Reject(r.Context(), req.Validator, req.Proof, id, req.Signature); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMessageStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := hashVar(w, r, "id")
	if !ok {
		return
	}
	status, err := h.bridge.MessageStatus(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageStatusResponse{
		Relayed:    status.Relayed,
		Fixed:      status.Fixed,
		CallStatus: status.CallStatus,
	})
}

func (h *Handler) handleLimits(w http.ResponseWriter, r *http.Request) {
	dir, err := limits.ParseDirection(mux.Vars(r)["direction"])
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	status, err := h.bridge.Limits(dir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LimitsResponse{
		Direction:  dir.String(),
		DailyLimit: (*hexutil.Big)(status.DailyLimit),
		MaxPerTx:   (*hexutil.Big)(status.MaxPerTx),
		MinPerTx:   (*hexutil.Big)(status.MinPerTx),
		Day:        status.Day,
		TotalToday: (*hexutil.Big)(status.TotalToday),
	})
}
