package dnssec

import (
	"context"
	"github.com/miekg/dns"
)

// Exchanger is the upstream resolver contract the key-finding walk (C8) uses
// to issue its own DS and DNSKEY subqueries. It is deliberately the only I/O
// seam in this package: wire transport, retries, TCP fallback and TSIG all
// live on the caller's implementation.
type Exchanger interface {
	Exchange(ctx context.Context, query *dns.Msg) (*dns.Msg, error)
}
