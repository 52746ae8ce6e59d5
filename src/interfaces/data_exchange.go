package interfaces

import "market-sync/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing state with UI shells
// (local REST surface plus websocket hub).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a state update to connected shells and caches it for
	// late joiners.
	Broadcast(state *models.MSyncState)

	// -----------------------------------------------------------------------------
	// UpdateState replaces the cached state without broadcasting.
	UpdateState(state *models.MSyncState)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
