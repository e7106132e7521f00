// Package format holds the display formatting the admin frontend applies to
// byte counts, quota usage and upload times.
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/mergestat/timediff"
)

// byteUnits are the unit names the frontend renders, base 1024.
var byteUnits = []string{"Байт", "КБ", "МБ", "ГБ", "ТБ", "ПБ"}

// Bytes renders a byte count as the frontend does: base-1024 with two
// decimals, except plain bytes which are shown as an integer.
func Bytes(n int64) string {
	if n <= 0 {
		return "0 " + byteUnits[0]
	}

	exp := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if exp >= len(byteUnits) {
		exp = len(byteUnits) - 1
	}
	if exp == 0 {
		return fmt.Sprintf("%d %s", n, byteUnits[0])
	}

	value := float64(n) / math.Pow(1024, float64(exp))
	return fmt.Sprintf("%.2f %s", value, byteUnits[exp])
}

// QuotaPercent computes the integer usage percentage for a quota pair.
// A zero or negative quota yields 0, and the result is clamped to 100.
func QuotaPercent(used, quota int64) int {
	if quota <= 0 {
		return 0
	}
	if used >= quota {
		return 100
	}
	if used <= 0 {
		return 0
	}
	return int(math.Round(float64(used) / float64(quota) * 100))
}

// RelativeTime renders a timestamp as a relative phrase like "3 days ago".
func RelativeTime(t time.Time) string {
	return timediff.TimeDiff(t)
}
