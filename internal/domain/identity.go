package domain

import "time"

// Identity is the verified caller of a request. It lives only for the
// duration of the request and is never persisted.
type Identity struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
}
