package dnssec

import (
	"context"
	"fmt"
	"github.com/miekg/dns"
)

// ValidateResponse authenticates a single-zone response (positive or
// negative) against an already-resolved, Good KeyEntry for its signer. It is
// the single-hop counterpart to ValidateCNAMEChain: the signer's chain of
// trust has already been proven by FindKey (C8), so this only needs to
// verify the RRSIGs covering msg itself and dispatch by classification
// (4.8). Referrals are classified and rejected upstream, in the
// orchestrator, before a message ever reaches here - there's no recursion
// to delegate into.
func ValidateResponse(ctx context.Context, signerZone string, dnskeys []*dns.DNSKEY, msg *dns.Msg) (AuthenticationResult, DenialOfExistenceState, error) {
	r := &result{zone: staticZone{name: signerZone}, msg: msg}

	answerSignatures, err := authenticate(signerZone, msg.Answer, dnskeys, answerSection)
	if err != nil {
		return Bogus, NotFound, fmt.Errorf("%w: %w", ErrBogusResultFound, err)
	}
	authoritySignatures, err := authenticate(signerZone, msg.Ns, dnskeys, authoritySection)
	if err != nil {
		return Bogus, NotFound, fmt.Errorf("%w: %w", ErrBogusResultFound, err)
	}

	recordSignatures := append(append(signatures{}, answerSignatures...), authoritySignatures...)
	if err := recordSignatures.Verify(); err != nil {
		return Bogus, NotFound, fmt.Errorf("%w: %w", ErrBogusResultFound, err)
	}

	r.answer = answerSignatures
	r.authority = authoritySignatures

	soaFoundInAuthority := recordsOfTypeExist(r.msg.Ns, dns.TypeSOA)

	// A positive response has at least one answer, and no SOA in the
	// Authority section.
	if !soaFoundInAuthority && len(r.msg.Answer) > 0 {
		state, err := validatePositiveResponse(ctx, r)
		return state, r.denialOfExistence, err
	}

	// A negative response has a SOA in the Authority section.
	if soaFoundInAuthority {
		state, err := validateNegativeResponse(ctx, r)
		return state, r.denialOfExistence, err
	}

	return Bogus, r.denialOfExistence, ErrFailsafeResponse
}
