package model

// CPU holds instantaneous CPU usage.
type CPU struct {
	PerCore []float64 // per-core percent 0-100
}

// Memory captures RAM and swap usage in megabytes.
type Memory struct {
	UsedMB    uint64
	TotalMB   uint64
	SwapUsed  uint64
	SwapTotal uint64
}

// GPU holds a single device snapshot.
type GPU struct {
	Index      int
	Name       string
	Util       float64 // percent
	MemUsedMB  float64
	MemTotalMB float64
	TempC      float64
}

// Fraction returns used/total, or 0 when total is 0.
func Fraction(used, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return used / total
}

const bytesPerMB = 1024 * 1024

// BytesToMB converts a byte count to whole megabytes.
func BytesToMB(b uint64) uint64 { return b / bytesPerMB }
