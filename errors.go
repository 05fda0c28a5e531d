package resolver

import "errors"

var (
	ErrNotRecursionDesired      = errors.New("only recursive queries are supported via this server")
	ErrNilMessageSentToExchange = errors.New("nil message sent to exchange")
	ErrNoUpstreamConfigured     = errors.New("no upstream nameserver configured")
)
