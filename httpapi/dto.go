package httpapi

import "time"

type stateResponse struct {
	Phase        string    `json:"phase"`
	Owner        string    `json:"owner"`
	TrustedParty string    `json:"trusted_party"`
	LastActive   time.Time `json:"last_active"`
	Timeout      string    `json:"timeout"`
}

type beneficiaryResponse struct {
	Recipient string `json:"recipient"`
	ShareBps  uint64 `json:"share_bps"`
	Claimed   bool   `json:"claimed"`
}

type beneficiaryListResponse struct {
	Beneficiaries []string `json:"beneficiaries"`
	TotalShareBps uint64   `json:"total_share_bps"`
}

type upsertBeneficiaryRequest struct {
	ShareBps uint64 `json:"share_bps"`
}

type claimRequest struct {
	// Token optionally names a fungible-token asset to settle alongside the
	// native currency.
	Token string `json:"token,omitempty"`
}

type sweepRequest struct {
	Asset string `json:"asset,omitempty"`
}

type depositRequest struct {
	Asset  string `json:"asset,omitempty"`
	Amount uint64 `json:"amount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	Status string `json:"status"`
}
