package handler

import (
	"regexp"
	"time"
)

// dbTimeout bounds every database call made from a handler so a stalled
// connection cannot pin a request forever.
const dbTimeout = 5 * time.Second

var (
	// emailPattern is deliberately loose: non-space local part, "@",
	// non-space domain containing a dot. Anything stricter rejects real
	// addresses without catching more typos.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// phonePattern accepts Brazilian landlines (10 digits) and mobiles
	// (11 digits), digits only.
	phonePattern = regexp.MustCompile(`^\d{10,11}$`)
	timePattern  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// validDate reports whether s is a real calendar date in YYYY-MM-DD form.
func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// validTime reports whether s is a time of day in HH:MM form.
func validTime(s string) bool {
	return timePattern.MatchString(s)
}
