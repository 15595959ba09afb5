package interfaces

import "net/http"

// HTTPHandler is the transport entry point mounted by cmd/server.
type HTTPHandler interface {
	http.Handler
}
