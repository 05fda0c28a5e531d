package resolver

import (
	"context"
	"fmt"
	"github.com/miekg/dns"
	"github.com/nsmithuk/resolver/dnssec"
)

// Resolver is a DNSSEC-validating stub resolver: it forwards queries to a
// single configured upstream nameserver, performs the chain-of-trust
// validation itself, and returns a response with the AD bit set, cleared,
// or SERVFAIL in its place, per RFC 4035 section 4.9.
type Resolver struct {
	upstream *nameserver
	orch     dnssec.OrchestratorConfig
}

// NewResolver builds a Resolver that forwards to the nameserver at addr
// (an IP address; port 53 is assumed) and validates against anchors. A nil
// anchors uses the module's built-in root KSK anchors.
func NewResolver(hostname, addr string, anchors *dnssec.AnchorStore) *Resolver {
	return NewResolverFromConfig(hostname, addr, dnssec.Config{Anchors: anchors})
}

// NewResolverFromConfig is the fuller constructor, for callers that have
// loaded a process config file (see FileConfig.DNSSECConfig) and want the
// key-cache bounds and NSEC3 iteration cap it describes applied as well.
func NewResolverFromConfig(hostname, addr string, cfg dnssec.Config) *Resolver {
	cfg.ApplyNSEC3IterationCap()

	ns := &nameserver{hostname: hostname, addr: addr}

	return &Resolver{
		upstream: ns,
		orch: dnssec.OrchestratorConfig{
			FindKey: dnssec.FindKeyConfig{
				Anchors:  cfg.AnchorsOrDefault(),
				Cache:    cfg.NewKeyCacheFromConfig(),
				Exchange: ns,
			},
		},
	}
}

// Exchange validates query against the configured upstream and trust
// anchors, returning the validated (or SERVFAIL'd) response. Only Msg is
// set on the returned Response; Duration, Deo and Auth are left unset.
func (r *Resolver) Exchange(ctx context.Context, query *dns.Msg) *Response {
	if query == nil {
		return ResponseError(ErrNilMessageSentToExchange)
	}
	if r.upstream == nil {
		return ResponseError(ErrNoUpstreamConfigured)
	}

	trace := NewTrace()
	ctx = context.WithValue(ctx, CtxTrace, trace)

	resp := dnssec.Validate(ctx, r.orch, query)
	trimPositiveResponse(resp)

	if len(query.Question) > 0 {
		Debug(fmt.Sprintf("%s: resolved %s %s -> %s", trace.ShortID(), query.Question[0].Name, TypeToString(query.Question[0].Qtype), RcodeToString(resp.Rcode)))
	}

	return &Response{
		Msg: resp,
	}
}

// trimPositiveResponse drops sections that carry no material information
// for a secure positive answer: an Authority section with nothing but the
// zone's NS records, and any Additional records beyond the OPT pseudo-RR.
func trimPositiveResponse(resp *dns.Msg) {
	if resp == nil || !resp.AuthenticatedData || len(resp.Answer) == 0 {
		return
	}
	if RemoveAuthoritySectionForPositiveAnswers && !recordsOfTypeExist(resp.Ns, dns.TypeSOA) {
		resp.Ns = removeRecordsOfType(resp.Ns, dns.TypeNS)
	}
	if RemoveAdditionalSectionForPositiveAnswers {
		resp.Extra = extractRecordsOfType(resp.Extra, dns.TypeOPT)
	}
}
