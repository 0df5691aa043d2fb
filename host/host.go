// Package host reports facts about the machine a benchmark runs on.
package host

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"github.com/shirou/gopsutil/v4/mem"
)

// Info describes the CPU and memory of the current machine.
// Cache sizes are informational and are zero when unknown.
type Info struct {
	CPU            string
	LogicalCores   int
	CacheLineBytes int
	L1DBytes       int
	L2Bytes        int
	L3Bytes        int
	TotalMemory    uint64
	AvailMemory    uint64
	GOOS           string
	GOARCH         string
}

// AvailableMemory returns the number of bytes the OS reports as
// available for new allocations.
func AvailableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("read virtual memory: %w", err)
	}

	return vm.Available, nil
}

// Describe collects Info for the current machine. Memory figures are
// left at zero if they cannot be read.
func Describe() Info {
	info := Info{
		CPU:            cpuid.CPU.BrandName,
		LogicalCores:   cpuid.CPU.LogicalCores,
		CacheLineBytes: cpuid.CPU.CacheLine,
		L1DBytes:       cpuid.CPU.Cache.L1D,
		L2Bytes:        cpuid.CPU.Cache.L2,
		L3Bytes:        cpuid.CPU.Cache.L3,
		GOOS:           runtime.GOOS,
		GOARCH:         runtime.GOARCH,
	}

	if info.CPU == "" {
		info.CPU = "unknown"
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
		info.AvailMemory = vm.Available
	}

	return info
}

// LogAttrs returns Info as slog attributes.
func (i Info) LogAttrs() []any {
	return []any{
		slog.String("cpu", i.CPU),
		slog.Int("logical_cores", i.LogicalCores),
		slog.Int("cache_line", i.CacheLineBytes),
		slog.Int("l1d", i.L1DBytes),
		slog.Int("l2", i.L2Bytes),
		slog.Int("l3", i.L3Bytes),
		slog.Uint64("mem_total", i.TotalMemory),
		slog.Uint64("mem_available", i.AvailMemory),
		slog.String("platform", i.GOOS+"/"+i.GOARCH),
	}
}
