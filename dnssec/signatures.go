package dnssec

import (
	"fmt"
	"github.com/hashicorp/go-multierror"
	"github.com/miekg/dns"
)

func (ss signatures) filterOnType(rtype uint16) signatures {
	set := make(signatures, 0, len(ss))
	for _, sig := range ss {
		if sig.rtype == rtype {
			set = append(set, sig)
		}
	}
	return set
}

func (ss signatures) countNameTypeCombinations() int {
	type combination struct {
		name   string
		rrtype uint16
	}
	combinations := make(map[combination]bool, len(ss))
	for _, sig := range ss {
		combinations[combination{
			name:   sig.name,
			rrtype: sig.rtype,
		}] = true
	}
	return len(combinations)
}

// Verify calls one of two local policy strategies for determining if the response is verified.
func (ss signatures) Verify() error {
	if RequireAllSignaturesValid {
		return ss.verifyAllRRSigsPerRRSet()
	}
	return ss.verifyOneOrMoreRRSigPerRRSet()
}

// verifyOneOrMoreRRSigPerRRSet a signature set. For a set to be valid, at least one signature per RRSet must be valid.
// All errors found along the way are aggregated into a single reported error.
func (ss signatures) verifyOneOrMoreRRSigPerRRSet() error {
	if len(ss) == 0 {
		return ErrSignatureSetEmpty
	}

	// It's most common to only have one rrsig, so we'll keep that instance simple.
	if len(ss) == 1 {
		if ss[0].verified {
			return nil
		}

		result := multierror.Append(nil, ErrVerifyFailed)
		if ss[0].err != nil {
			result = multierror.Append(result, ss[0].err)
		} else {
			result = multierror.Append(result, ErrUnableToVerify)
		}
		return result.ErrorOrNil()
	}

	//---

	type rrsetState struct {
		verifiedSigSeen bool
		err             *multierror.Error
	}

	type rrsetKey struct {
		name  string
		rtype uint16
	}

	states := make(map[rrsetKey]rrsetState, len(ss))
	for _, s := range ss {
		key := rrsetKey{name: s.name, rtype: s.rtype}
		state, found := states[key]

		if !found {
			state = rrsetState{}
		}

		// Once True, it's always true.
		state.verifiedSigSeen = state.verifiedSigSeen || s.verified

		if !s.verified {
			if s.err != nil {
				state.err = multierror.Append(state.err, s.err)
			} else {
				state.err = multierror.Append(state.err, ErrUnableToVerify)
			}
		}

		states[key] = state
	}

	//---

	var result *multierror.Error
	for key, state := range states {
		if !state.verifiedSigSeen {
			result = multierror.Append(result, ErrVerifyFailed)
			result = multierror.Append(result, fmt.Errorf("type %d: %w", key.rtype, state.err.ErrorOrNil()))
		}
	}

	return result.ErrorOrNil()
}

// verifyAllRRSigsPerRRSet a signature set. For a set to be valid, all signatures within it must be valid. A nil error will be returned in this case.
// If one or more errors are found, we make the local policy decision to conclude the whole response is invalid.
// All errors found are aggregated into a single reported error.
func (ss signatures) verifyAllRRSigsPerRRSet() error {
	if len(ss) == 0 {
		return ErrSignatureSetEmpty
	}

	var result *multierror.Error
	for _, s := range ss {
		if !s.verified {
			result = multierror.Append(result, ErrVerifyFailed)
			if s.err != nil {
				result = multierror.Append(result, s.err)
			} else {
				result = multierror.Append(result, ErrUnableToVerify)
			}
		}
	}

	return result.ErrorOrNil()
}

// Valid reports whether the set passes Verify under the current signature policy.
func (ss signatures) Valid() bool {
	return ss.Verify() == nil
}

// extractDSRecords returns all DS records from signatures with a rrtype of DS.
func (ss signatures) extractDSRecords() []*dns.DS {
	parentDSRecords := make([]*dns.DS, 0)
	for _, s := range ss.filterOnType(dns.TypeDS) {
		parentDSRecords = append(parentDSRecords, extractRecords[*dns.DS](s.rrset)...)
	}
	return parentDSRecords
}

func (ss signatures) extractNSECRecords() []*dns.NSEC {
	parentDSRecords := make([]*dns.NSEC, 0)
	for _, s := range ss.filterOnType(dns.TypeNSEC) {
		parentDSRecords = append(parentDSRecords, extractRecords[*dns.NSEC](s.rrset)...)
	}
	return parentDSRecords
}

func (ss signatures) extractNSEC3Records() []*dns.NSEC3 {
	parentDSRecords := make([]*dns.NSEC3, 0)
	for _, s := range ss.filterOnType(dns.TypeNSEC3) {
		parentDSRecords = append(parentDSRecords, extractRecords[*dns.NSEC3](s.rrset)...)
	}
	return parentDSRecords
}
