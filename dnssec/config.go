package dnssec

import (
	"github.com/nsmithuk/resolver/dnssec/doe"
	"time"
)

// Clock overrides the source of "now" used for RRSIG validity-period
// checks and key-cache expiry (spec open question: clock source). Tests
// assign a fixed-time closure here to make expiry/validity checks
// deterministic; production code should leave it at its default.
var Clock = time.Now

// Config bundles the tunables a validator instance needs: where to look for
// trust anchors, how aggressively to cache key-finding results, and how long
// to believe a broken zone stays broken before re-checking it.
type Config struct {
	// Anchors seeds the chain of trust. If nil, NewAnchorStore's built-in
	// root KSK anchors (github.com/nsmithuk/dnssec-root-anchors-go) are used.
	Anchors *AnchorStore

	// KeyCacheMaxEntries bounds the key cache's size via LRU eviction.
	// <= 0 disables the size cap, leaving TTL as the only eviction
	// mechanism.
	KeyCacheMaxEntries int

	// KeyCacheBadTTL is how long a Bad KeyEntry is cached before the walk is
	// retried for that zone (4.2). Defaults to 60s.
	KeyCacheBadTTL time.Duration

	// KeyCacheMaxTTL caps how long any KeyEntry - including Good ones - is
	// trusted before FindKey is asked to re-derive it, regardless of the
	// DNSKEY RRset's own TTL. 0 means no cap beyond the RRset's TTL.
	KeyCacheMaxTTL time.Duration

	// NSEC3MaxIterations caps the iteration count an NSEC3 record may carry
	// before it's ignored as a denial-of-existence proof (nsec3.iterations.N
	// in the process config table). 0 leaves doe.MaxIterations untouched.
	NSEC3MaxIterations uint16
}

// ApplyNSEC3IterationCap pushes c.NSEC3MaxIterations into the doe package's
// global cap, if set. Call once at startup before validating any response.
func (c Config) ApplyNSEC3IterationCap() {
	if c.NSEC3MaxIterations > 0 {
		doe.MaxIterations = c.NSEC3MaxIterations
	}
}

// NewKeyCacheFromConfig builds the KeyCache a Config describes.
func (c Config) NewKeyCacheFromConfig() *KeyCache {
	return NewKeyCache(c.KeyCacheMaxEntries, c.KeyCacheBadTTL, c.KeyCacheMaxTTL)
}

// AnchorsOrDefault returns c.Anchors, or a freshly seeded root-only store if
// none was configured.
func (c Config) AnchorsOrDefault() *AnchorStore {
	if c.Anchors != nil {
		return c.Anchors
	}
	return NewAnchorStore()
}

// DefaultRequireAllSignaturesValid is the out-of-the-box signature-set
// policy: a response is accepted once at least one RRSIG per RRset
// verifies, per RFC 4035 section 5.3.1's guidance to try each matching
// DNSKEY in turn rather than demand unanimity.
const DefaultRequireAllSignaturesValid = false

// RequireAllSignaturesValid switches signatures.Verify to the stricter
// policy: every RRSIG covering an RRset must verify, not just one. Tests
// toggle this to exercise both policies; production code should leave it at
// its default unless a zone's signing practices call for the stricter check.
var RequireAllSignaturesValid = DefaultRequireAllSignaturesValid

// DefaultSuppressBogusResponseSections is the out-of-the-box policy for a
// Bogus result: drop the untrustworthy Answer/Authority sections rather
// than hand them back alongside the synthesized SERVFAIL, aligning with
// https://datatracker.ietf.org/doc/html/rfc4035#section-5.5.
const DefaultSuppressBogusResponseSections = true

// SuppressBogusResponseSections controls whether Validate strips a Bogus
// response's Answer and Authority sections before returning it.
var SuppressBogusResponseSections = DefaultSuppressBogusResponseSections

type Logger func(string)

// Default logging functions just black-hole the input.

var Debug Logger = func(s string) {}
var Info Logger = func(s string) {}
var Warn Logger = func(s string) {}
