package resolver

import (
	"github.com/nsmithuk/resolver/dnssec"
	"time"
)

const (
	DefaultSuppressBogusResponseSections = true

	DefaultRemoveAuthoritySectionForPositiveAnswers  = true
	DefaultRemoveAdditionalSectionForPositiveAnswers = true

	DefaultTimeoutUDP = 150 * time.Millisecond
	DefaultTimeoutTCP = 600 * time.Millisecond

	// minEdns0BufferSize is the EDNS0 UDP payload size advertised upstream,
	// large enough to carry a signed answer without truncation in the
	// common case (6).
	minEdns0BufferSize = 1232
)

var (
	// RemoveAuthoritySectionForPositiveAnswers indicates if the Authority section should be returned when it's deemed
	// that it's record have no material impact on the result. e.g. it only contains nameserver records.
	RemoveAuthoritySectionForPositiveAnswers  = DefaultRemoveAuthoritySectionForPositiveAnswers
	RemoveAdditionalSectionForPositiveAnswers = DefaultRemoveAdditionalSectionForPositiveAnswers
)

// SuppressBogusResponseSections mirrors dnssec.SuppressBogusResponseSections
// so callers can tune it through this package without reaching into dnssec
// directly. See dnssec.SuppressBogusResponseSections for details.
var SuppressBogusResponseSections = DefaultSuppressBogusResponseSections

//---

type Logger func(string)

// Default logging functions just black-hole the input.

var Query Logger = func(s string) {}
var Debug Logger = func(s string) {}
var Info Logger = func(s string) {}
var Warn Logger = func(s string) {}

//---

func init() {
	dnssec.Info = func(s string) {
		Info(s)
	}
	dnssec.Warn = func(s string) {
		Warn(s)
	}
	dnssec.Debug = func(s string) {
		Debug(s)
	}
}
