package dnssec

import (
	"context"
	"github.com/miekg/dns"
)

// ReasonTXTClass is the reserved QCLASS a Bogus reason string is attached
// under, as a TXT record at the root name in the ADDITIONAL section (4.9).
const ReasonTXTClass = 65280

// OrchestratorConfig bundles the collaborators Validate needs to classify,
// key-find and validate a single upstream response.
type OrchestratorConfig struct {
	FindKey FindKeyConfig
}

// Validate is the entry point (C10): forward the client's query upstream
// with CD=1, classify whatever comes back, validate it against the chain
// of trust, and finalize the AD bit / SERVFAIL / reason TXT before handing
// the message back to the caller (4.9).
func Validate(ctx context.Context, cfg OrchestratorConfig, query *dns.Msg) *dns.Msg {
	if len(query.Question) == 0 {
		return synthesizeServfail(query, dns.RcodeServerFailure, "")
	}

	// Checking Disabled: the client asked us not to validate. Forward as-is,
	// with AD cleared since we're vouching for nothing.
	if query.CheckingDisabled {
		resp, err := cfg.FindKey.Exchange.Exchange(ctx, query)
		if err != nil {
			return synthesizeServfail(query, dns.RcodeServerFailure, "")
		}
		resp.AuthenticatedData = false
		return resp
	}

	upstreamQuery := query.Copy()
	upstreamQuery.CheckingDisabled = true

	resp, err := cfg.FindKey.Exchange.Exchange(ctx, upstreamQuery)
	if err != nil {
		return synthesizeServfail(query, dns.RcodeServerFailure, "")
	}

	// RRSIG queries with a non-empty NOERROR answer bypass validation:
	// signatures over signatures are undefined.
	if query.Question[0].Qtype == dns.TypeRRSIG && resp.Rcode == dns.RcodeSuccess && len(resp.Answer) > 0 {
		resp.AuthenticatedData = false
		return resp
	}

	status, reason := classifyAndValidate(ctx, cfg.FindKey, resp)
	return finalize(query, resp, status, reason)
}

func classifyAndValidate(ctx context.Context, fk FindKeyConfig, resp *dns.Msg) (AuthenticationResult, string) {
	q := resp.Question[0]

	switch classifyResponse(resp) {
	case ClassCNAME, ClassCNAMENoData, ClassCNAMENameError:
		status, _, err := ValidateCNAMEChain(ctx, fk, q, resp)
		return status, errString(err)

	case ClassPositive, ClassAny, ClassNoData, ClassNameError:
		signer := findSignerName(resp)
		if signer == "" {
			// Nothing was signed. We're only Insecure if we can prove the
			// enclosing zone has no secure delegation; otherwise a trust
			// anchor exists and we expected signatures that never came.
			entry, err := FindKey(ctx, fk, q.Name, q.Qclass)
			if err != nil {
				return Bogus, err.Error()
			}
			if entry.Kind == KeyEntryNull {
				return Insecure, ""
			}
			return Bogus, "unsigned response for a zone under a trust anchor"
		}

		entry, err := FindKey(ctx, fk, signer, q.Qclass)
		if err != nil {
			return Bogus, err.Error()
		}
		switch entry.Kind {
		case KeyEntryNull:
			return Insecure, ""
		case KeyEntryBad:
			return Bogus, entry.Reason
		}

		dnskeys := extractRecords[*dns.DNSKEY](entry.DNSKEYRRset)
		status, _, err := ValidateResponse(ctx, signer, dnskeys, resp)
		return status, errString(err)

	default:
		// A referral, or a shape we can't otherwise place: not expected
		// from a resolver that's already done the recursing for us.
		return Bogus, "unexpected response shape"
	}
}

// findSignerName returns the signer name common to the response's RRSIGs,
// preferring the answer section, or "" if nothing is signed. It only looks
// at the first RRSIG it finds, which is correct for a single-zone response;
// an answer whose RRsets are signed by different zones (a CNAME chain
// crossing a zone cut) is handled separately, by ValidateCNAMEChain's
// segmentBySigner, before this function is ever reached.
func findSignerName(msg *dns.Msg) string {
	for _, rrsig := range extractRecords[*dns.RRSIG](msg.Answer) {
		return dns.CanonicalName(rrsig.SignerName)
	}
	for _, rrsig := range extractRecords[*dns.RRSIG](msg.Ns) {
		return dns.CanonicalName(rrsig.SignerName)
	}
	return ""
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// finalize applies the last step of 4.9: SECURE sets AD, BOGUS becomes
// SERVFAIL (preserving an NXDOMAIN/YXDOMAIN rcode as-is) with the reason
// attached as TXT, and everything else (INSECURE, UNCHECKED) is returned
// unmodified with AD cleared.
func finalize(query, resp *dns.Msg, status AuthenticationResult, reason string) *dns.Msg {
	switch status {
	case Secure:
		resp.AuthenticatedData = true
		return resp
	case Bogus:
		rcode := dns.RcodeServerFailure
		if resp.Rcode == dns.RcodeNameError || resp.Rcode == dns.RcodeYXDomain {
			rcode = resp.Rcode
		}
		out := synthesizeServfail(query, rcode, reason)
		if SuppressBogusResponseSections {
			return out
		}
		out.Answer = resp.Answer
		out.Ns = resp.Ns
		return out
	default:
		resp.AuthenticatedData = false
		return resp
	}
}

func synthesizeServfail(query *dns.Msg, rcode int, reason string) *dns.Msg {
	resp := new(dns.Msg)
	resp.SetRcode(query, rcode)
	attachReasonTXT(resp, reason)
	return resp
}

func attachReasonTXT(msg *dns.Msg, reason string) {
	if reason == "" {
		return
	}
	msg.Extra = append(msg.Extra, &dns.TXT{
		Hdr: dns.RR_Header{Name: ".", Rrtype: dns.TypeTXT, Class: ReasonTXTClass, Ttl: 0},
		Txt: chunkReason(reason, 255),
	})
}

func chunkReason(s string, n int) []string {
	if len(s) <= n {
		return []string{s}
	}
	chunks := make([]string, 0, (len(s)+n-1)/n)
	for len(s) > n {
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	return append(chunks, s)
}
