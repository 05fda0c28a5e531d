package dnssec

import (
	"context"
	"fmt"
	"github.com/miekg/dns"
	"github.com/nsmithuk/resolver/dnssec/doe"
)

func validatePositiveResponse(ctx context.Context, r *result) (status AuthenticationResult, err error) {

	// We extract any delegation DS records in the answer.
	// Previously we only looked in the authority for DS records.
	r.dsRecords = r.answer.extractDSRecords()

	//---

	// A DNAME in the answer causes the authoritative server to synthesize a
	// CNAME at qname; verify that synthesis before anything else, since the
	// synthesized CNAME may carry no RRSIG of its own (authenticate already
	// lets it through unsigned when it's immediately preceded by a DNAME
	// whose owner strictly encloses it).
	if err := validateDNAMESynthesis(r.msg.Answer); err != nil {
		return Bogus, err
	}

	nsec := doe.NewDenialOfExistenceNSEC(ctx, r.zone.Name(), r.authority.extractNSECRecords())
	nsec3 := doe.NewDenialOfExistenceNSEC3(ctx, r.zone.Name(), r.authority.extractNSEC3Records())

	wildcardSignaturesSeen := false
	wildcardSignaturesVerified := false
	for _, sig := range r.answer {
		if sig.wildcard {
			// RFC 4592 section 4.4: DNAME records can't be wildcard-owned.
			if sig.rtype == dns.TypeDNAME {
				return Bogus, ErrDNAMEWildcard
			}

			// If here, it implies that the specific QNAME didn't exist, so we expect a NSEC(3) record proving that.
			// https://datatracker.ietf.org/doc/html/rfc5155#section-8.8

			// TODO: this check needs to ensure only one RRSET has been expanded, as there
			// can be multiple

			if wildcardSignaturesSeen {
				// More than one wildcard signature is suspicious
				return Bogus, ErrMultipleWildcardSignatures
			}

			wildcardSignaturesSeen = true

			nsecVerified := false
			nsec3Verified := false

			if !nsec.Empty() {
				nsecVerified = nsec.PerformExpandedWildcardProof(r.msg.Question[0].Name)
				if nsecVerified {
					r.denialOfExistence = NsecWildcard
				}
			}

			if !nsec3.Empty() {
				nsec3Verified = nsec3.PerformExpandedWildcardProof(sig.name, sig.rrsig.Labels)
				if nsec3Verified {
					r.denialOfExistence = Nsec3Wildcard
				}
			}

			if nsecVerified || nsec3Verified {
				wildcardSignaturesVerified = true
			}

		}
	}

	if !wildcardSignaturesSeen || wildcardSignaturesVerified {
		return Secure, nil
	}

	return Bogus, ErrBogusWildcardDoeNotFound
}

// validateDNAMESynthesis checks every CNAME in the answer that immediately
// follows a DNAME: an authoritative server synthesizes such a CNAME itself
// (RFC 6672 section 3.1), so its target must equal the QNAME-relative labels
// taken from in front of the DNAME's owner, concatenated with the DNAME's
// target. The synthesized CNAME is allowed to carry no RRSIG of its own -
// the DNAME's signature is what's being trusted here. More than one CNAME
// record owned by the same synthesized name is rejected outright.
func validateDNAMESynthesis(answer []dns.RR) error {
	var pending *dns.DNAME

	for _, rr := range answer {
		switch rec := rr.(type) {
		case *dns.DNAME:
			pending = rec
		case *dns.RRSIG:
			// RRSIGs are interleaved with the rrsets they cover; they don't
			// break the DNAME/CNAME adjacency we're tracking.
		case *dns.CNAME:
			dname := pending
			pending = nil
			if dname == nil {
				continue
			}

			owner := dns.CanonicalName(rec.Header().Name)
			dnameOwner := dns.CanonicalName(dname.Header().Name)
			if owner == dnameOwner || !dns.IsSubDomain(dnameOwner, owner) {
				// Not actually synthesized from this DNAME.
				continue
			}

			if n := len(extractRecordsOfNameAndType(answer, rec.Header().Name, dns.TypeCNAME)); n > 1 {
				return fmt.Errorf("%w: %d records at %s", ErrDNAMESynthesisMultiple, n, owner)
			}

			relative := owner[:len(owner)-len(dnameOwner)]
			expected := relative + dns.CanonicalName(dname.Target)
			got := dns.CanonicalName(rec.Target)
			if expected != got {
				return fmt.Errorf("%w: cname %s target %s, expected %s", ErrDNAMESynthesisMismatch, owner, got, expected)
			}
		default:
			pending = nil
		}
	}

	return nil
}
