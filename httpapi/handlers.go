package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/custodiaorg/libcustodia-go/custody"
)

var errMissingCaller = errors.New("httpapi: missing " + callerHeader + " header")

// requireCaller rejects mutating requests without an attested identity.
func requireCaller(w http.ResponseWriter, r *http.Request) (custody.Identity, bool) {
	id := caller(r)
	if id == custody.NoIdentity {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: errMissingCaller.Error()})
		return custody.NoIdentity, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true // empty body keeps the zero-value request
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateResponse{
		Phase:        string(s.sys.State()),
		Owner:        string(s.sys.Owner()),
		TrustedParty: string(s.sys.TrustedParty()),
		LastActive:   s.sys.LastActive(),
		Timeout:      s.sys.Timeout().String(),
	})
}

func (s *Server) handleListBeneficiaries(w http.ResponseWriter, r *http.Request) {
	ids := s.sys.Beneficiaries()
	out := beneficiaryListResponse{
		Beneficiaries: make([]string, len(ids)),
		TotalShareBps: s.sys.TotalShareBps(),
	}
	for i, id := range ids {
		out.Beneficiaries[i] = string(id)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBeneficiary(w http.ResponseWriter, r *http.Request) {
	b, err := s.sys.Beneficiary(custody.Identity(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, beneficiaryResponse{
		Recipient: string(b.Recipient),
		ShareBps:  b.ShareBps,
		Claimed:   b.Claimed,
	})
}

func (s *Server) handleUpsertBeneficiary(w http.ResponseWriter, r *http.Request) {
	id, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req upsertBeneficiaryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	recipient := custody.Identity(mux.Vars(r)["id"])
	if err := s.sys.AddOrUpdateBeneficiary(id, recipient, req.ShareBps); err != nil {
		writeError(w, err)
		return
	}
	s.persist()
	writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
}

func (s *Server) handleRemoveBeneficiary(w http.ResponseWriter, r *http.Request) {
	id, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := s.sys.RemoveBeneficiary(id, custody.Identity(mux.Vars(r)["id"])); err != nil {
		writeError(w, err)
		return
	}
	s.persist()
	writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
}

func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := s.sys.RecordActivity(id); err != nil {
		writeError(w, err)
		return
	}
	s.persist()
	writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	id, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := s.sys.Trigger(id); err != nil {
		writeError(w, err)
		return
	}
	s.persist()
	writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req claimRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.sys.Claim(id, custody.AssetID(req.Token)); err != nil {
		// Claim may have consumed the flag even on transfer failure, so
		// persist regardless of the outcome.
		s.persist()
		writeError(w, err)
		return
	}
	s.persist()
	writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	id, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req sweepRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.sys.Sweep(id, custody.AssetID(req.Asset)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.pool.Deposit(custody.AssetID(req.Asset), req.Amount); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
}
