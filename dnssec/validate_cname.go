package dnssec

import (
	"context"
	"fmt"
	"github.com/miekg/dns"
	"slices"
)

// segmentBySigner partitions an RRset slice into per-signer groups of
// (RRSIG, covered RRset) pairs. A CNAME chain can legitimately cross zone
// cuts, so each hop's signature may need a different zone's keys to verify
// (4.8); grouping by signer lets each hop be authenticated independently.
func segmentBySigner(rrsets []dns.RR) map[string][]dns.RR {
	segments := make(map[string][]dns.RR)
	for _, rrsig := range extractRecords[*dns.RRSIG](rrsets) {
		signer := dns.CanonicalName(rrsig.SignerName)
		segments[signer] = append(segments[signer], rrsig)
		segments[signer] = append(segments[signer], extractRecordsOfNameAndType(rrsets, rrsig.Header().Name, rrsig.TypeCovered)...)
	}
	return segments
}

// ValidateCNAMEChain authenticates a response whose answer is an unresolved
// or resolved CNAME chain (ClassCNAMENoData / ClassCNAMENameError /
// ClassCNAME), resolving and checking each hop's signer independently, then
// running the usual negative-response proof over the tail of the chain.
//
// A Null KeyEntry partway down the chain downgrades the whole result to
// Insecure rather than Bogus: an opt-out or proven-insecure delegation means
// we simply stop being able to vouch for anything signed below it.
func ValidateCNAMEChain(ctx context.Context, cfg FindKeyConfig, q dns.Question, msg *dns.Msg) (AuthenticationResult, DenialOfExistenceState, error) {
	// A DNAME earlier in the chain causes the next CNAME to be synthesized
	// by the authoritative server rather than signed; segmentBySigner would
	// otherwise just drop that unsigned CNAME, so verify its synthesis here
	// against the raw answer before segmenting.
	if err := validateDNAMESynthesis(msg.Answer); err != nil {
		return Bogus, NotFound, err
	}

	answerSegments := segmentBySigner(msg.Answer)
	authoritySegments := segmentBySigner(msg.Ns)

	signers := make(map[string]bool, len(answerSegments)+len(authoritySegments))
	for s := range answerSegments {
		signers[s] = true
	}
	for s := range authoritySegments {
		signers[s] = true
	}
	if len(signers) == 0 {
		return Bogus, NotFound, ErrBogusResultFound
	}

	// Longest name first: the tail of the chain, closest to qname, is
	// validated last, and it's the tail's authority section we need for the
	// final negative-response proof.
	ordered := make([]string, 0, len(signers))
	for s := range signers {
		ordered = append(ordered, s)
	}
	slices.SortFunc(ordered, func(a, b string) int { return len(b) - len(a) })

	overallState := Secure
	var tailAuthority signatures
	var tailZone string

	for _, signer := range ordered {
		entry, err := FindKey(ctx, cfg, signer, q.Qclass)
		if err != nil {
			return Bogus, NotFound, err
		}

		if entry.Kind == KeyEntryBad {
			return Bogus, NotFound, newReasonError(ReasonWalkExhausted, "key-finding failed for signer %s: %s", signer, entry.Reason)
		}
		if entry.Kind == KeyEntryNull {
			overallState = Insecure
			continue
		}

		dnskeys := extractRecords[*dns.DNSKEY](entry.DNSKEYRRset)

		if segment, ok := answerSegments[signer]; ok {
			sigs, err := authenticate(signer, segment, dnskeys, answerSection)
			if err != nil {
				return Bogus, NotFound, fmt.Errorf("%w: %w", ErrBogusResultFound, err)
			}
			if err := sigs.Verify(); err != nil {
				return Bogus, NotFound, fmt.Errorf("%w: %w", ErrBogusResultFound, err)
			}
			for _, sig := range sigs {
				// RFC 4592 section 4.4: DNAME records can't be wildcard-owned.
				if sig.rtype == dns.TypeDNAME && sig.wildcard {
					return Bogus, NotFound, ErrDNAMEWildcard
				}
			}
		}

		if segment, ok := authoritySegments[signer]; ok {
			sigs, err := authenticate(signer, segment, dnskeys, authoritySection)
			if err != nil {
				return Bogus, NotFound, fmt.Errorf("%w: %w", ErrBogusResultFound, err)
			}
			if err := sigs.Verify(); err != nil {
				return Bogus, NotFound, fmt.Errorf("%w: %w", ErrBogusResultFound, err)
			}
			tailAuthority = sigs
			tailZone = signer
		}
	}

	if overallState != Secure {
		return Insecure, NotFound, nil
	}

	if !recordsOfTypeExist(msg.Ns, dns.TypeSOA) {
		// Every hop resolved positively; there's no NODATA/NXDOMAIN tail to prove.
		return Secure, NotFound, nil
	}

	r := &result{zone: staticZone{name: tailZone}, msg: msg, authority: tailAuthority}
	state, err := validateNegativeResponse(ctx, r)
	return state, r.denialOfExistence, err
}
