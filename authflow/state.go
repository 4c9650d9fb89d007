package authflow

// Status identifies the single client-observed authentication state. Exactly
// one status holds at any time.
type Status int

const (
	// StatusUnauthenticated means no session: no tokens, no pending challenge.
	StatusUnauthenticated Status = iota
	// StatusPendingTwoFactor means primary credentials were accepted and a
	// single-use challenge token is held in memory awaiting a second factor.
	StatusPendingTwoFactor
	// StatusAuthenticated means a valid, non-expired access token is stored.
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusPendingTwoFactor:
		return "pending_two_factor"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}
