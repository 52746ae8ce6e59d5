package interfaces

// -----------------------------------------------------------------------------
// ITokenVault defines the contract for the persisted session token. Only the
// opaque token survives process restarts; no market state is ever persisted.
// -----------------------------------------------------------------------------

type ITokenVault interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the backing store schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Load returns the persisted token, or "" when none is stored.
	Load() (string, error)

	// -----------------------------------------------------------------------------

	// Save persists the token, replacing any previous one.
	Save(token string) error

	// -----------------------------------------------------------------------------

	// Clear removes the persisted token.
	Clear() error

	// -----------------------------------------------------------------------------

	// Close the backing store connection
	Close() error
}
