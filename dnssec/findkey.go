package dnssec

import (
	"context"
	"fmt"
	"github.com/miekg/dns"
	"github.com/nsmithuk/resolver/dnssec/doe"
	"slices"
	"time"
)

// FindKeyConfig carries the collaborators the key-finding walk (C8) needs:
// where to look for anchors, where to cache results, and how to reach the
// upstream resolver for the DS/DNSKEY subqueries the walk issues itself.
type FindKeyConfig struct {
	Anchors  *AnchorStore
	Cache    *KeyCache
	Exchange Exchanger
}

// ancestorChain returns the ancestors of name, root first, name last:
// [".", "com.", "example.com.", "www.example.com."].
func ancestorChain(name string) []string {
	name = dns.CanonicalName(name)
	if name == "." {
		return []string{"."}
	}
	idx := dns.Split(name)
	chain := make([]string, 0, len(idx)+1)
	chain = append(chain, ".")
	for j := len(idx) - 1; j >= 0; j-- {
		chain = append(chain, name[idx[j]:])
	}
	return chain
}

// FindKey walks the trust chain from the nearest configured anchor down to
// signerName, chaining DS -> DNSKEY validations one label at a time and
// consulting/populating the key cache along the way (4.7). It issues its own
// subqueries via cfg.Exchange and never recurses through delegation NS
// records; every hop it takes is named explicitly by ancestorChain.
func FindKey(ctx context.Context, cfg FindKeyConfig, signerName string, qclass uint16) (KeyEntry, error) {
	signerName = dns.CanonicalName(signerName)

	if cached, ok := cfg.Cache.Find(signerName, qclass); ok && dns.CanonicalName(cached.Zone) == signerName {
		return cached, nil
	}

	anchorSet, ok := cfg.Anchors.Find(signerName)
	if !ok {
		return nullKeyEntry(signerName, qclass, "no enclosing trust anchor", 0), nil
	}
	anchorName := dns.CanonicalName(anchorSet[0].Header().Name)

	chain := ancestorChain(signerName)
	start := 0
	for i, name := range chain {
		if name == anchorName {
			start = i
			break
		}
	}
	chain = chain[start:]

	// Establish the starting KeyEntry at the anchor itself.
	var current KeyEntry
	if anchorSet[0].Header().Rrtype == dns.TypeDNSKEY {
		current = goodKeyEntry(anchorName, qclass, anchorSet, 0)
	} else {
		entry, err := cfg.fetchAndValidateDNSKEY(ctx, anchorName, qclass, extractRecords[*dns.DS](anchorSet))
		if err != nil {
			return KeyEntry{}, err
		}
		current = entry
	}
	cfg.Cache.Store(current)

	if current.Kind != KeyEntryGood || anchorName == signerName {
		return current, nil
	}

	// restoreEntry is the last Good entry seen; on a non-delegation hop
	// (e.g. a CNAME where a DS was expected) we keep it rather than
	// discarding it, mirroring the original's oldKeyEntry restore.
	restoreEntry := current

	for i := start + 1; i < len(chain); i++ {
		next := chain[i]

		outcome, err := cfg.fetchDS(ctx, next, qclass, current.DNSKEYRRset)
		if err != nil {
			return KeyEntry{}, err
		}

		if outcome.terminal != nil {
			cfg.Cache.Store(*outcome.terminal)
			// A Null entry (no secure delegation) stops the walk as it is:
			// everything below it is insecure, not broken.
			if next == signerName || outcome.terminal.Kind == KeyEntryNull {
				return *outcome.terminal, nil
			}
			return badKeyEntry(signerName, qclass, fmt.Sprintf("chain broken resolving DS at %s", next), 0), nil
		}

		if !outcome.isDelegation {
			// Not a zone cut at this label (e.g. CNAME): keep walking with
			// the same key entry.
			current = restoreEntry
			continue
		}

		keyEntry, err := cfg.fetchAndValidateDNSKEY(ctx, next, qclass, outcome.ds)
		if err != nil {
			return KeyEntry{}, err
		}
		cfg.Cache.Store(keyEntry)

		if keyEntry.Kind != KeyEntryGood {
			if next == signerName {
				return keyEntry, nil
			}
			return badKeyEntry(signerName, qclass, fmt.Sprintf("chain broken resolving DNSKEY at %s", next), 0), nil
		}

		current = keyEntry
		restoreEntry = keyEntry
	}

	return current, nil
}

type dsOutcome struct {
	ds           []*dns.DS
	isDelegation bool
	terminal     *KeyEntry // set when the walk must stop here (Null or Bad)
}

// fetchDS issues a DS query for name and classifies the response, per
// processDSResponse (4.7).
func (cfg FindKeyConfig) fetchDS(ctx context.Context, name string, qclass uint16, parentKeys []dns.RR) (dsOutcome, error) {
	q := new(dns.Msg)
	q.SetQuestion(name, dns.TypeDS)
	q.Question[0].Qclass = qclass
	q.SetEdns0(1232, true)
	q.CheckingDisabled = true

	resp, err := cfg.Exchange.Exchange(ctx, q)
	if err != nil {
		return dsOutcome{}, newReasonError(ReasonUpstreamError, "DS query for %s: %v", name, err)
	}

	switch classifyResponse(resp) {
	case ClassPositive, ClassAny:
		dsRRset := extractRecordsOfNameAndType(resp.Answer, name, dns.TypeDS)
		if len(dsRRset) == 0 {
			e := badKeyEntry(name, qclass, "DS query returned positive response without DS records", 0)
			return dsOutcome{terminal: &e}, nil
		}

		sigs, err := authenticate(name, resp.Answer, extractRecords[*dns.DNSKEY](parentKeys), answerSection)
		if err != nil || sigs.Verify() != nil {
			e := badKeyEntry(name, qclass, "DS RRset failed signature verification", 0)
			return dsOutcome{terminal: &e}, nil
		}

		ds := extractRecords[*dns.DS](dsRRset)
		if !atLeastOneSupportedDSAlgorithm(ds) {
			e := nullKeyEntry(name, qclass, "no supported algorithm", 0)
			return dsOutcome{terminal: &e}, nil
		}

		return dsOutcome{ds: ds, isDelegation: true}, nil

	case ClassCNAME:
		// Not a delegation point: the walk continues at the next label using
		// the same keys.
		return dsOutcome{isDelegation: false}, nil

	case ClassNoData, ClassNameError:
		doeState, ok := dsProvenAbsent(ctx, name, resp)
		if ok {
			e := nullKeyEntry(name, qclass, "DS proven absent: "+doeState.String(), 0)
			return dsOutcome{terminal: &e}, nil
		}
		e := badKeyEntry(name, qclass, "DS NODATA/NXDOMAIN without a valid denial-of-existence proof", 0)
		return dsOutcome{terminal: &e}, nil

	default:
		e := badKeyEntry(name, qclass, "unexpected classification for DS query: "+classifyResponse(resp).String(), 0)
		return dsOutcome{terminal: &e}, nil
	}
}

// dsProvenAbsent implements nsecProvesNodataDsReply / proveNoDS: try NSEC
// first, falling back to NSEC3 (with opt-out treated as proof of absence).
func dsProvenAbsent(ctx context.Context, name string, resp *dns.Msg) (DenialOfExistenceState, bool) {
	zone := zoneNameFromAuthority(resp.Ns, name)

	nsec := doe.NewDenialOfExistenceNSEC(ctx, zone, extractRecords[*dns.NSEC](resp.Ns))
	nsec3 := doe.NewDenialOfExistenceNSEC3(ctx, zone, extractRecords[*dns.NSEC3](resp.Ns))

	if !nsec.Empty() {
		if nameSeen, typeSeen := nsec.TypeBitMapContainsAnyOf(name, []uint16{dns.TypeDS}); nameSeen && !typeSeen {
			return NsecMissingDS, true
		}
	}

	if !nsec3.Empty() {
		if nameSeen, typeSeen := nsec3.TypeBitMapContainsAnyOf(name, []uint16{dns.TypeDS}); nameSeen && !typeSeen {
			return Nsec3MissingDS, true
		}
		if optedOut, _, _, _ := nsec3.PerformClosestEncloserProof(name); optedOut {
			return Nsec3OptOut, true
		}
	}

	return NotFound, false
}

// supportedDSDigests is the set of digest algorithms this module can verify
// a DS record's hash with (miekg/dns ToDS support).
var supportedDSDigests = map[uint8]bool{
	dns.SHA1:   true,
	dns.SHA256: true,
	dns.SHA384: true,
}

func atLeastOneSupportedDSAlgorithm(ds []*dns.DS) bool {
	for _, d := range ds {
		if supportedDSDigests[d.DigestType] {
			return true
		}
	}
	return false
}

func zoneNameFromAuthority(ns []dns.RR, qname string) string {
	soas := extractRecordsOfType(ns, dns.TypeSOA)
	if len(soas) > 0 {
		return dns.CanonicalName(soas[0].Header().Name)
	}
	return dns.CanonicalName(qname)
}

// fetchAndValidateDNSKEY locates the DNSKEY RRset at name and validates it by
// cross-checking DS digests from ds against candidate DNSKEYs: at least one
// DS must match a DNSKEY, and that DNSKEY must sign the DNSKEY RRset
// (verifyNewDNSKEYs, 4.7).
func (cfg FindKeyConfig) fetchAndValidateDNSKEY(ctx context.Context, name string, qclass uint16, ds []*dns.DS) (KeyEntry, error) {
	q := new(dns.Msg)
	q.SetQuestion(name, dns.TypeDNSKEY)
	q.Question[0].Qclass = qclass
	q.SetEdns0(1232, true)
	q.CheckingDisabled = true

	resp, err := cfg.Exchange.Exchange(ctx, q)
	if err != nil {
		return KeyEntry{}, newReasonError(ReasonUpstreamError, "DNSKEY query for %s: %v", name, err)
	}

	keyRecords := extractRecordsOfNameAndType(resp.Answer, name, dns.TypeDNSKEY)
	dnskeys := extractRecords[*dns.DNSKEY](keyRecords)
	if len(dnskeys) == 0 {
		return badKeyEntry(name, qclass, "no DNSKEY records found for zone", 0), nil
	}

	if len(ds) == 0 {
		// The anchor itself was a DNSKEY set; nothing to cross-check.
		return goodKeyEntry(name, qclass, slices.Clone(keyRecords), time.Duration(minTTL(dnskeys))*time.Second), nil
	}

	// Cross-check the zone's DNSKEY RRset against the parent's DS records and
	// verify its self-signature, the same way the (otherwise unused, once a
	// delegation chain is walked one hop at a time) recursive-resolver
	// verifier does it.
	r := &result{zone: staticZone{name: name}}
	status, err := verifyDNSKEYs(ctx, r, keyRecords, ds)
	if status == Insecure {
		return badKeyEntry(name, qclass, "no DNSKEY matches any DS record", 0), nil
	}
	if err != nil {
		return badKeyEntry(name, qclass, "DNSKEY RRset failed signature verification", 0), nil
	}

	return goodKeyEntry(name, qclass, slices.Clone(keyRecords), time.Duration(minTTL(dnskeys))*time.Second), nil
}

func minTTL(dnskeys []*dns.DNSKEY) (ttl uint32) {
	if len(dnskeys) == 0 {
		return 0
	}
	ttl = dnskeys[0].Header().Ttl
	for _, k := range dnskeys[1:] {
		if k.Header().Ttl < ttl {
			ttl = k.Header().Ttl
		}
	}
	return ttl
}
