package ports

import "net/http"

// HTTPDoer is the subset of *http.Client the remote resolver needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
