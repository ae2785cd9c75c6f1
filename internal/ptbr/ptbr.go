// Package ptbr formats values the way the shop staff read them.
package ptbr

import (
	"fmt"
	"time"
)

// Duration renders minutes as "1h 30min", "45min" or "2h".
func Duration(minutes int) string {
	if minutes <= 0 {
		return "0min"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dmin", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dmin", h, m)
	}
}

// DateTime renders "02/01/2006 às 15:04".
func DateTime(t time.Time) string {
	return t.Format("02/01/2006") + " às " + t.Format("15:04")
}

// Date renders "02/01/2006".
func Date(t time.Time) string {
	return t.Format("02/01/2006")
}
