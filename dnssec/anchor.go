package dnssec

import (
	"fmt"
	"github.com/miekg/dns"
	"github.com/nsmithuk/dnssec-root-anchors-go/anchors"
	"io"
	"slices"
	"sort"
	"sync"
)

// AnchorStore holds the set of trust anchors (DS or DNSKEY RRsets) a validator
// trusts a priori, indexed by zone apex. Writes are expected only during
// start-up; the read path (Find) is lock-friendly for the common case of a
// handful of configured anchors plus the root.
type AnchorStore struct {
	mu      sync.RWMutex
	anchors map[string][]dns.RR // apex name -> RRset (all DS, or all DNSKEY)
}

// NewAnchorStore returns a store seeded with the module's built-in root KSK
// DS records, sourced from github.com/nsmithuk/dnssec-root-anchors-go.
func NewAnchorStore() *AnchorStore {
	s := &AnchorStore{anchors: make(map[string][]dns.RR)}
	root := make([]dns.RR, 0, len(anchors.GetValid()))
	for _, ds := range anchors.GetValid() {
		root = append(root, ds)
	}
	if len(root) > 0 {
		s.anchors[dns.CanonicalName(root[0].Header().Name)] = root
	}
	return s
}

// Store records rrset as a trust anchor. All records must share the same
// owner name, class and be either entirely DS or entirely DNSKEY.
func (s *AnchorStore) Store(rrset []dns.RR) error {
	if len(rrset) == 0 {
		return ErrSignatureSetEmpty
	}
	owner := dns.CanonicalName(rrset[0].Header().Name)
	rtype := rrset[0].Header().Rrtype
	if rtype != dns.TypeDS && rtype != dns.TypeDNSKEY {
		return fmt.Errorf("unsupported trust anchor record type %s", dns.TypeToString[rtype])
	}
	for _, rr := range rrset {
		if rr.Header().Rrtype != rtype || dns.CanonicalName(rr.Header().Name) != owner {
			return ErrNSRecordsHaveMismatchingOwners
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchors[owner] = append(s.anchors[owner], rrset...)
	return nil
}

// Find returns the trust anchor RRset whose apex is the longest ancestor of
// (or equal to) name. Returns nil, false if no anchor encloses name.
func (s *AnchorStore) Find(name string) ([]dns.RR, bool) {
	name = dns.CanonicalName(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var best string
	var bestSet []dns.RR
	for apex, set := range s.anchors {
		if !dns.IsSubDomain(apex, name) {
			continue
		}
		if bestSet == nil || dns.CompareDomainName(apex, name) > dns.CompareDomainName(best, name) {
			best = apex
			bestSet = set
		}
	}
	return bestSet, bestSet != nil
}

// All returns every configured anchor, keyed by apex name. The returned
// RRsets are shared with the store; callers must not mutate them.
func (s *AnchorStore) All() map[string][]dns.RR {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]dns.RR, len(s.anchors))
	for apex, set := range s.anchors {
		out[apex] = set
	}
	return out
}

// LoadAnchorFile parses a zone-file-style stream of DS and DNSKEY records,
// canonically sorts them, groups contiguous records sharing (owner, type,
// class) into RRsets, and stores each resulting RRset as an anchor.
// Non-DS/non-DNSKEY records are silently dropped. The result is
// order-insensitive: any permutation of the same input records yields the
// same stored anchor set.
func (s *AnchorStore) LoadAnchorFile(r io.Reader, origin string) error {
	zp := dns.NewZoneParser(r, origin, "")

	records := make([]dns.RR, 0, 8)
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		if rr.Header().Rrtype != dns.TypeDS && rr.Header().Rrtype != dns.TypeDNSKEY {
			continue
		}
		records = append(records, rr)
	}
	if err := zp.Err(); err != nil {
		return err
	}

	sort.SliceStable(records, func(i, j int) bool {
		hi, hj := records[i].Header(), records[j].Header()
		if hi.Name != hj.Name {
			return dns.CanonicalName(hi.Name) < dns.CanonicalName(hj.Name)
		}
		if hi.Rrtype != hj.Rrtype {
			return hi.Rrtype < hj.Rrtype
		}
		return hi.Class < hj.Class
	})

	var group []dns.RR
	flush := func() error {
		if len(group) == 0 {
			return nil
		}
		return s.Store(slices.Clone(group))
	}

	for _, rr := range records {
		if len(group) > 0 {
			last := group[len(group)-1].Header()
			if dns.CanonicalName(last.Name) != dns.CanonicalName(rr.Header().Name) ||
				last.Rrtype != rr.Header().Rrtype || last.Class != rr.Header().Class {
				if err := flush(); err != nil {
					return err
				}
				group = group[:0]
			}
		}
		group = append(group, rr)
	}
	return flush()
}
