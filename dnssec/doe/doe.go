package doe

import (
	"context"
	"github.com/miekg/dns"
)

type DenialOfExistenceNSEC struct {
	ctx     context.Context
	zone    string
	records []*dns.NSEC
}

type DenialOfExistenceNSEC3 struct {
	ctx     context.Context
	zone    string
	records []*dns.NSEC3
}

func NewDenialOfExistenceNSEC(ctx context.Context, zone string, records []*dns.NSEC) *DenialOfExistenceNSEC {
	return &DenialOfExistenceNSEC{
		ctx,
		zone,
		records,
	}
}

// MaxIterations is the iteration-count ceiling above which an NSEC3 record
// is ignored as a denial-of-existence proof (RFC 5155 section 10.3's
// security-considerations table, collapsed to a single global cap rather
// than the RFC's per-key-size tiers - see DESIGN.md).
var MaxIterations uint16 = 2500

func NewDenialOfExistenceNSEC3(ctx context.Context, zone string, records []*dns.NSEC3) *DenialOfExistenceNSEC3 {
	checkRecords := make([]*dns.NSEC3, 0, len(records))
	for _, r := range records {
		// We must ignore records that have unknown hash or flag values, or
		// whose iteration count is excessive for the keys in play.
		if r.Hash != dns.SHA1 {
			continue
		}
		if r.Flags < 0 || r.Flags > 1 {
			continue
		}
		if r.Iterations > MaxIterations {
			continue
		}

		checkRecords = append(checkRecords, r)
	}
	return &DenialOfExistenceNSEC3{
		ctx,
		zone,
		checkRecords,
	}
}

//----------------------------------------------------------

func (doe *DenialOfExistenceNSEC) Empty() bool {
	return len(doe.records) == 0
}

func (doe *DenialOfExistenceNSEC3) Empty() bool {
	return len(doe.records) == 0
}
