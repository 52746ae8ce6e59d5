package interfaces

import "context"

// -----------------------------------------------------------------------------
// IChannelTransport abstracts the platform push-channel so the connection
// manager stays transport-neutral (real websocket in production, fakes in
// tests).
// -----------------------------------------------------------------------------

type IChannelTransport interface {

	// OpenChannel dials the push channel at url. It returns an open channel
	// or an error; the caller owns the returned channel's lifecycle.
	OpenChannel(ctx context.Context, url string) (IChannel, error)
}

// -----------------------------------------------------------------------------
// IChannel is one live push channel.
// -----------------------------------------------------------------------------

type IChannel interface {

	// ReadFrame blocks until the next raw frame arrives. Any error, including
	// a server-initiated close, means the channel is dead.
	ReadFrame() ([]byte, error)

	// -----------------------------------------------------------------------------

	// Close releases the channel. Closing an already-closed channel is a no-op.
	Close() error
}
