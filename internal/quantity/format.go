package quantity

import (
	"math"
	"strconv"
)

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB"}

// BytesToHuman renders a byte count with one decimal and a binary unit,
// e.g. 1536 -> "1.5KiB". Values of 1024 TiB and above are shown in PiB.
func BytesToHuman(b int64) string {
	v := float64(b)
	for _, unit := range byteUnits {
		if v < 1024 {
			return oneDecimal(v) + unit
		}
		v /= 1024
	}
	return oneDecimal(v) + "PiB"
}

// MillicoresToCores converts millicores to (fractional) cores.
func MillicoresToCores(m int64) float64 {
	return float64(m) / 1000
}

// FormatCores renders millicores as cores with one decimal, e.g. "2.5 cores".
func FormatCores(m int64) string {
	return oneDecimal(MillicoresToCores(m)) + " cores"
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
