package generator

import (
	"fmt"
	"time"

	"github.com/soar/uknd_exhibit/models"
)

// FormatIGT formats an in-game time in milliseconds as MM:SS:mmm. Minutes
// are not wrapped into hours, so a 75 minute run reads 75:00:000.
func FormatIGT(ms uint32) string {
	return fmt.Sprintf("%02d:%02d:%03d", ms/1000/60, ms/1000%60, ms%1000)
}

// RelativeDate describes how long ago a submission was made, using the
// largest whole unit ("3 months ago"). Unknown dates and dates that are
// not in the past read "unknown".
func RelativeDate(date models.Date, now time.Time) string {
	if date.IsZero() {
		return "unknown"
	}

	elapsed := now.Sub(date.Time())
	seconds := int64(elapsed / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days/365 > 0:
		return ago(days/365, "year")
	case days/30 > 0:
		return ago(days/30, "month")
	case days > 0:
		return ago(days, "day")
	case hours > 0:
		return ago(hours, "hour")
	case minutes > 0:
		return ago(minutes, "minute")
	case seconds > 0:
		return ago(seconds, "second")
	}
	return "unknown"
}

func ago(n int64, unit string) string {
	if n > 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}
