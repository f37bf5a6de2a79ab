// Package httpapi exposes one custody system instance over a JSON HTTP API.
//
// Authentication is delegated to the fronting environment: the caller
// identity is read verbatim from the X-Caller header, mirroring how the core
// treats identity as externally attested. Deployments must ensure the header
// cannot be forged (mTLS proxy, gateway auth, or loopback-only listener).
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/custodiaorg/libcustodia-go/custody"
)

// callerHeader carries the authenticated caller identity.
const callerHeader = "X-Caller"

// Depositor is the pool-funding side of the ledger, outside the core state
// machine.
type Depositor interface {
	Deposit(asset custody.AssetID, amount uint64) error
}

// Persister stores a state snapshot after every successful mutation.
// *storage.SnapshotStore satisfies it.
type Persister interface {
	Save(custody.Snapshot) error
}

// Server hosts a single custody.System. Pool and Store are optional; a nil
// Pool disables the deposits endpoint and a nil Store disables persistence.
type Server struct {
	sys   *custody.System
	pool  Depositor
	store Persister
	log   *logrus.Logger
}

func NewServer(sys *custody.System, pool Depositor, store Persister, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{sys: sys, pool: pool, store: store, log: log}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/v1/beneficiaries", s.handleListBeneficiaries).Methods(http.MethodGet)
	r.HandleFunc("/v1/beneficiaries/{id}", s.handleGetBeneficiary).Methods(http.MethodGet)
	r.HandleFunc("/v1/beneficiaries/{id}", s.handleUpsertBeneficiary).Methods(http.MethodPut)
	r.HandleFunc("/v1/beneficiaries/{id}", s.handleRemoveBeneficiary).Methods(http.MethodDelete)
	r.HandleFunc("/v1/activity", s.handleRecordActivity).Methods(http.MethodPost)
	r.HandleFunc("/v1/trigger", s.handleTrigger).Methods(http.MethodPost)
	r.HandleFunc("/v1/claims", s.handleClaim).Methods(http.MethodPost)
	r.HandleFunc("/v1/sweep", s.handleSweep).Methods(http.MethodPost)
	if s.pool != nil {
		r.HandleFunc("/v1/deposits", s.handleDeposit).Methods(http.MethodPost)
	}
	return r
}

// persist saves a snapshot after a successful mutation. Persistence failures
// are logged, not surfaced: the in-memory state already changed and the
// response must say so.
func (s *Server) persist() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.sys.Snapshot()); err != nil {
		s.log.WithError(err).Error("failed to persist state snapshot")
	}
}

func caller(r *http.Request) custody.Identity {
	return custody.Identity(r.Header.Get(callerHeader))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor maps the closed custody failure set onto stable HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, custody.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, custody.ErrInvalidBeneficiary):
		return http.StatusNotFound
	case errors.Is(err, custody.ErrInvalidShare),
		errors.Is(err, custody.ErrAllocationExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, custody.ErrAlreadyFinalized),
		errors.Is(err, custody.ErrAlreadyTriggered),
		errors.Is(err, custody.ErrNotTriggered),
		errors.Is(err, custody.ErrAlreadyClaimed),
		errors.Is(err, custody.ErrNoBeneficiaries),
		errors.Is(err, custody.ErrTimeLockNotExpired),
		errors.Is(err, custody.ErrReentrantCall):
		return http.StatusConflict
	case errors.Is(err, custody.ErrTransferFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
