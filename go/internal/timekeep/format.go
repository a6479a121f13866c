package timekeep

import "fmt"

// FormatTime renders a signed seconds count as "MM:SS". Negative input keeps
// its sign in front of the absolute-value rendering ("-01:05" for -65). The
// minutes field grows past two digits when needed; seconds are always two
// digits. With showSeconds false only the signed minutes count is rendered.
func FormatTime(seconds int, showSeconds bool) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}

	minutes := seconds / 60
	if !showSeconds {
		return fmt.Sprintf("%s%02d", sign, minutes)
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes, seconds%60)
}

// FormatTimeLeft is FormatTime for a nullable snapshot value. A missing value
// renders as zero rather than failing.
func FormatTimeLeft(seconds *int, showSeconds bool) string {
	if seconds == nil {
		return FormatTime(0, showSeconds)
	}
	return FormatTime(*seconds, showSeconds)
}
