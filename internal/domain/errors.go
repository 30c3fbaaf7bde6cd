package domain

import "errors"

var (
	// ErrUnknownCollection reports a logical collection name that was never
	// registered. Local validation only; storage is not consulted.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrStoreUnavailable reports a persisted store whose root location is
	// missing or unreachable. Fatal at startup.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrScoringUnsupported reports a store that cannot attach relevance
	// scores to search results. Absorbed by the retrieval fallback, never
	// surfaced to callers.
	ErrScoringUnsupported = errors.New("scored search unsupported")

	// ErrRetrievalFailed reports a similarity search that failed for reasons
	// other than missing scoring capability.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrMissingCredential reports an empty hosted-model API key.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrInvalidConfiguration reports chain configuration that cannot work,
	// such as an empty model name.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrGenerationFailed reports a failed hosted-model call. Never retried
	// by the core; the decision to retry belongs to the caller.
	ErrGenerationFailed = errors.New("generation failed")
)
