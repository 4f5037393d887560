package tui

import "github.com/dustin/go-humanize"

// formatBytes renders a byte count in binary units ("1.5 KiB").
func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// formatCount renders a count with thousands separators.
func formatCount(n int64) string {
	return humanize.Comma(n)
}
