// Package sysmon samples system-wide CPU and memory usage.
package sysmon

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
	MemUsed    uint64  // bytes
	MemTotal   uint64  // bytes
}

// Sample collects a system-wide CPU and memory snapshot. CPU usage is the
// delta since the previous call, so the first sample of a process may read
// zero. Fields that cannot be read stay zero and their errors are joined.
func Sample(ctx context.Context) (Stats, error) {
	var s Stats
	var errs []error

	cpuPcts, err := cpu.PercentWithContext(ctx, 0, false)
	switch {
	case err != nil:
		errs = append(errs, err)
	case len(cpuPcts) > 0:
		s.CPUPercent = cpuPcts[0]
	}

	vmem, err := mem.VirtualMemoryWithContext(ctx)
	switch {
	case err != nil:
		errs = append(errs, err)
	case vmem != nil:
		s.MemPercent = vmem.UsedPercent
		s.MemUsed = vmem.Used
		s.MemTotal = vmem.Total
	}
	return s, errors.Join(errs...)
}
