package dnssec

import (
	"github.com/miekg/dns"
)

// classifyResponse maps a message to one of the validator categories (C7),
// used both by the key-finding walk (C8) to interpret DS/DNSKEY subquery
// responses and by callers choosing which C9 validator to run.
//
// Decision table over rcode, presence of ANSWER RRs matching qname/qtype,
// presence of a CNAME chain, and presence of an authority SOA/NSEC/NSEC3.
// Tie-breaks follow RFC 4035 section 5.
func classifyResponse(msg *dns.Msg) ResponseClassification {
	if msg == nil || len(msg.Question) == 0 {
		return ClassUnknown
	}

	qname := dns.CanonicalName(msg.Question[0].Name)
	qtype := msg.Question[0].Qtype

	soaInAuthority := recordsOfTypeExist(msg.Ns, dns.TypeSOA)
	nsInAuthority := recordsOfTypeExist(msg.Ns, dns.TypeNS)

	directAnswers := extractRecordsOfNameAndType(msg.Answer, qname, qtype)
	cnames := extractRecordsOfType(msg.Answer, dns.TypeCNAME)

	// A referral has no answers, no SOA, but NS records in the authority.
	if len(msg.Answer) == 0 && !soaInAuthority && nsInAuthority {
		return ClassReferral
	}

	if qtype == dns.TypeANY && len(msg.Answer) > 0 {
		return ClassAny
	}

	if len(directAnswers) > 0 {
		return ClassPositive
	}

	// An unresolved CNAME chain: the answer ends in a CNAME whose target was
	// never itself answered for qtype, under a NODATA or NXDOMAIN rcode.
	if len(cnames) > 0 {
		lastTarget := dns.CanonicalName(cnames[len(cnames)-1].(*dns.CNAME).Target)
		if len(extractRecordsOfNameAndType(msg.Answer, lastTarget, qtype)) == 0 {
			if msg.Rcode == dns.RcodeNameError {
				return ClassCNAMENameError
			}
			if soaInAuthority {
				return ClassCNAMENoData
			}
		}
		return ClassCNAME
	}

	if msg.Rcode == dns.RcodeNameError {
		return ClassNameError
	}

	if soaInAuthority {
		return ClassNoData
	}

	return ClassUnknown
}
