// Package testing provides fake metric sources for widget and dashboard tests.
package testing

import "github.com/Dicklesworthstone/tsm/internal/model"

// FakeCPU is a scripted CPU source.
type FakeCPU struct {
	Cores     []float64
	RAMUsed   uint64
	RAMTotal  uint64
	SwapUsed  uint64
	SwapTotal uint64

	// Err is returned by Refresh when set.
	Err error

	RefreshCalls int
}

func (f *FakeCPU) Refresh() error {
	f.RefreshCalls++
	return f.Err
}

func (f *FakeCPU) CoreUsage() []float64         { return f.Cores }
func (f *FakeCPU) Memory() (used, total uint64) { return f.RAMUsed, f.RAMTotal }
func (f *FakeCPU) Swap() (used, total uint64)   { return f.SwapUsed, f.SwapTotal }

// FakeGPU is a scripted GPU source.
type FakeGPU struct {
	GPUs []model.GPU
	Err  error

	RefreshCalls int
}

func (f *FakeGPU) Refresh() error {
	f.RefreshCalls++
	return f.Err
}

func (f *FakeGPU) Devices() []model.GPU { return f.GPUs }

// NewFakeCPU returns a four-core source with 8 GB RAM and 2 GB swap.
func NewFakeCPU() *FakeCPU {
	return &FakeCPU{
		Cores:     []float64{12.5, 50, 80, 100},
		RAMUsed:   4096,
		RAMTotal:  8192,
		SwapUsed:  256,
		SwapTotal: 2048,
	}
}

// NewFakeGPU returns a source with a single device.
func NewFakeGPU() *FakeGPU {
	return &FakeGPU{
		GPUs: []model.GPU{
			{Index: 0, Name: "NVIDIA GeForce RTX 3080", Util: 45, MemUsedMB: 2048, MemTotalMB: 10240, TempC: 65},
		},
	}
}
