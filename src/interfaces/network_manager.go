package interfaces

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for authenticated HTTP requests with
// retry logic. All methods return the raw response body; a server-reported
// authentication rejection maps to helpers.ErrUnauthorized.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified path with query parameters.
	Get(path string, params map[string]string) ([]byte, error)

	// -----------------------------------------------------------------------------

	// PostJSON performs a POST request with a JSON body (nil for empty).
	PostJSON(path string, body interface{}) ([]byte, error)

	// -----------------------------------------------------------------------------

	// PostForm performs a POST request with form-encoded values.
	PostForm(path string, values map[string]string) ([]byte, error)

	// -----------------------------------------------------------------------------

	// Delete performs a DELETE request to the specified path.
	Delete(path string) ([]byte, error)
}
