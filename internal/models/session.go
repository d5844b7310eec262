package models

import "time"

// SeoulZone is the zone the board issues token expiries in.
var SeoulZone = time.FixedZone("KST", 9*60*60)

// MinSessionLifetime is how long a cached token must still be valid to be reused.
const MinSessionLifetime = time.Hour

// Session is the authenticated board session. It is read-only for the whole run.
type Session struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // unix seconds
}

// ExpiresAt returns the expiry in the board's zone.
func (s *Session) ExpiresAt() time.Time {
	return time.Unix(s.Expiry, 0).In(SeoulZone)
}

// Valid reports whether the token can be reused at now: it must be set and
// outlive now by more than MinSessionLifetime.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.Token == "" || s.Expiry == 0 {
		return false
	}
	return s.ExpiresAt().Sub(now) > MinSessionLifetime
}

// TTL returns the remaining lifetime at now, or zero once expired.
func (s *Session) TTL(now time.Time) time.Duration {
	if s == nil {
		return 0
	}
	if d := s.ExpiresAt().Sub(now); d > 0 {
		return d
	}
	return 0
}

// Profile is the applicant data loaded once per run and shared read-only by
// every apply worker.
type Profile struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	ResumeID string `json:"resumeId"`
}
