// Package sampler reads live CPU, memory and GPU metrics for the dashboard.
// Every provider is a synchronous pull: Refresh takes a reading and the
// getters return the most recent successful one.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Dicklesworthstone/tsm/internal/model"
)

// ErrUnavailable marks a reading that could not be taken. Callers keep
// showing their previous values.
var ErrUnavailable = errors.New("metrics unavailable")

// CPU samples per-core utilization, memory and swap through gopsutil.
type CPU struct {
	prevCore []cpu.TimesStat
	reading  model.CPU
	memory   model.Memory

	times   func(percpu bool) ([]cpu.TimesStat, error)
	virtual func() (*mem.VirtualMemoryStat, error)
	swap    func() (*mem.SwapMemoryStat, error)
}

func NewCPU() *CPU {
	return &CPU{
		times:   cpu.Times,
		virtual: mem.VirtualMemory,
		swap:    mem.SwapMemory,
	}
}

// Refresh takes a new reading. Per-core usage is the busy share of the
// time elapsed since the previous Refresh, so the first reading is all
// zeros. A failed part keeps its previous values.
func (c *CPU) Refresh() error {
	var errs []error

	if coreTimes, err := c.times(true); err != nil {
		errs = append(errs, fmt.Errorf("cpu times: %w", err))
	} else {
		c.reading.PerCore = corePercents(c.prevCore, coreTimes)
		c.prevCore = coreTimes
	}

	if vm, err := c.virtual(); err != nil {
		errs = append(errs, fmt.Errorf("virtual memory: %w", err))
	} else {
		c.memory.UsedMB = model.BytesToMB(vm.Used)
		c.memory.TotalMB = model.BytesToMB(vm.Total)
	}

	if sw, err := c.swap(); err != nil {
		errs = append(errs, fmt.Errorf("swap: %w", err))
	} else {
		c.memory.SwapUsed = model.BytesToMB(sw.Used)
		c.memory.SwapTotal = model.BytesToMB(sw.Total)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
	}
	return nil
}

// CoreUsage returns per-core utilization in percent.
func (c *CPU) CoreUsage() []float64 { return c.reading.PerCore }

// Memory returns used and total RAM in megabytes.
func (c *CPU) Memory() (used, total uint64) { return c.memory.UsedMB, c.memory.TotalMB }

// Swap returns used and total swap in megabytes.
func (c *CPU) Swap() (used, total uint64) { return c.memory.SwapUsed, c.memory.SwapTotal }

// CPU percentages from times delta.
func corePercents(prev, cur []cpu.TimesStat) []float64 {
	perCore := make([]float64, len(cur))
	for i, c := range cur {
		if i >= len(prev) {
			continue
		}
		p := prev[i]
		dt := c.Total() - p.Total()
		di := (c.Idle + c.Iowait) - (p.Idle + p.Iowait)
		if dt > 0 {
			perCore[i] = clampPercent(100 * (1 - di/dt))
		}
	}
	return perCore
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

const (
	gpuQueryTimeout = 400 * time.Millisecond
	gpuMinInterval  = 2 * time.Second
)

var gpuQueryArgs = []string{
	"--query-gpu=index,name,utilization.gpu,memory.used,memory.total,temperature.gpu",
	"--format=csv,noheader,nounits",
}

// GPU reads NVIDIA devices through nvidia-smi. The tool is slow, so it is
// queried at most once per MinInterval and the cached devices are served
// in between.
type GPU struct {
	Timeout     time.Duration
	MinInterval time.Duration

	devices   []model.GPU
	lastQuery time.Time
	lastErr   error

	query func(ctx context.Context) (string, error)
	now   func() time.Time
}

func NewGPU() *GPU {
	return &GPU{
		Timeout:     gpuQueryTimeout,
		MinInterval: gpuMinInterval,
		query:       nvidiaSMI,
		now:         time.Now,
	}
}

// Refresh queries nvidia-smi unless the last query is younger than
// MinInterval, in which case the last outcome is returned again.
func (g *GPU) Refresh() error {
	now := g.now()
	if !g.lastQuery.IsZero() && now.Sub(g.lastQuery) < g.MinInterval {
		return g.lastErr
	}
	g.lastQuery = now
	g.lastErr = g.refresh()
	return g.lastErr
}

func (g *GPU) refresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), g.Timeout)
	defer cancel()

	out, err := g.query(ctx)
	if err != nil {
		return fmt.Errorf("%w: nvidia-smi: %w", ErrUnavailable, err)
	}
	devices, err := ParseNvidiaSMI(out)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(devices) == 0 {
		return fmt.Errorf("%w: no GPU devices found", ErrUnavailable)
	}
	g.devices = devices
	return nil
}

// Devices returns the last successful reading.
func (g *GPU) Devices() []model.GPU { return g.devices }

func nvidiaSMI(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "nvidia-smi", gpuQueryArgs...).CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	return string(out), err
}

// ParseNvidiaSMI parses one device per line of
// "index, name, utilization.gpu, memory.used, memory.total, temperature.gpu"
// CSV as printed with --format=csv,noheader,nounits. Fields reported as
// [N/A] read as zero. Output without devices yields nil, nil.
func ParseNvidiaSMI(output string) ([]model.GPU, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, nil
	}
	lower := strings.ToLower(output)
	if strings.Contains(lower, "no devices") || strings.Contains(lower, "not found") {
		return nil, nil
	}

	var gpus []model.GPU
	for n, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 6 {
			return nil, fmt.Errorf("nvidia-smi line %d has %d fields, expected 6", n+1, len(fields))
		}

		// the name may itself contain commas; the numeric columns never do
		metrics := fields[len(fields)-4:]
		index, err := parseField(fields[0])
		if err != nil {
			return nil, fmt.Errorf("GPU index: %w", err)
		}
		gpu := model.GPU{
			Index: int(index),
			Name:  strings.TrimSpace(strings.Join(fields[1:len(fields)-4], ",")),
		}
		if gpu.Util, err = parseField(metrics[0]); err != nil {
			return nil, fmt.Errorf("GPU utilization: %w", err)
		}
		if gpu.MemUsedMB, err = parseField(metrics[1]); err != nil {
			return nil, fmt.Errorf("GPU memory used: %w", err)
		}
		if gpu.MemTotalMB, err = parseField(metrics[2]); err != nil {
			return nil, fmt.Errorf("GPU memory total: %w", err)
		}
		if gpu.TempC, err = parseField(metrics[3]); err != nil {
			return nil, fmt.Errorf("GPU temperature: %w", err)
		}
		gpus = append(gpus, gpu)
	}
	return gpus, nil
}

func parseField(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	if s == "" || s == "[N/A]" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return f, nil
}

// NoGPU stands in for GPU when sampling is switched off.
type NoGPU struct{}

func (NoGPU) Refresh() error {
	return fmt.Errorf("%w: GPU sampling disabled", ErrUnavailable)
}

func (NoGPU) Devices() []model.GPU { return nil }
