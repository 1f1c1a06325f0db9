package library

import (
	"fmt"
	"math"
)

// FormatDuration renders raw seconds as M:SS with zero-padded seconds,
// flooring fractional values. A nil duration renders "0:00".
func FormatDuration(seconds *float64) string {
	if seconds == nil || *seconds < 0 {
		return "0:00"
	}
	total := int(math.Floor(*seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
