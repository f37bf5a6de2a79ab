package custody

import "errors"

var (
	// ErrUnauthorized indicates the caller lacks the role the operation requires.
	ErrUnauthorized = errors.New("custody: caller is not authorized")

	// ErrInvalidBeneficiary indicates an empty identifier or an identifier
	// that is not registered.
	ErrInvalidBeneficiary = errors.New("custody: invalid or unknown beneficiary")

	// ErrInvalidShare indicates a share outside (0, 10000] basis points.
	ErrInvalidShare = errors.New("custody: share must be in (0, 10000] basis points")

	// ErrAllocationExceeded indicates the write would push the total
	// allocation above 10000 basis points.
	ErrAllocationExceeded = errors.New("custody: total allocation exceeds 10000 basis points")

	// ErrAlreadyFinalized indicates a registry write after distribution was
	// triggered.
	ErrAlreadyFinalized = errors.New("custody: distribution triggered, registry is read-only")

	// ErrTimeLockNotExpired indicates a trigger attempt before the activity
	// timeout elapsed by a caller other than the trusted party.
	ErrTimeLockNotExpired = errors.New("custody: activity timeout has not elapsed")

	// ErrAlreadyTriggered indicates the system already left the open phase.
	ErrAlreadyTriggered = errors.New("custody: distribution already triggered")

	// ErrNoBeneficiaries indicates a trigger attempt on an empty registry.
	ErrNoBeneficiaries = errors.New("custody: no registered beneficiaries")

	// ErrNotTriggered indicates a claim attempt while the system is still open.
	ErrNotTriggered = errors.New("custody: distribution not triggered")

	// ErrAlreadyClaimed indicates the beneficiary already claimed its share.
	ErrAlreadyClaimed = errors.New("custody: share already claimed")

	// ErrTransferFailed indicates the asset ledger gateway reported a failure.
	ErrTransferFailed = errors.New("custody: asset transfer failed")

	// ErrInvalidOracle indicates an empty trusted party at construction.
	ErrInvalidOracle = errors.New("custody: trusted party must not be empty")

	// ErrReentrantCall indicates a state-mutating call was attempted while
	// another one was in progress on the same system instance.
	ErrReentrantCall = errors.New("custody: reentrant call rejected")

	// ErrNilGateway indicates construction without an asset ledger gateway.
	ErrNilGateway = errors.New("custody: asset ledger gateway is required")
)
