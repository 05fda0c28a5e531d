package resolver

type CtxKey uint8

const (
	ctxZoneName CtxKey = iota

	// CtxTrace carries the *Trace for the in-flight request, so nameserver
	// exchange logging can tag its lines with the same short ID a caller
	// sees in the final Response.
	CtxTrace
)
