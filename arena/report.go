package arena

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/heapkit/heapkit/memutils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"
)

// Describe renders a human-readable report of the arena: the backing block's
// start address, the available byte count, and one line per chunk in offset
// order. It never mutates the chain and its output grows with the chunk count.
func (a *Arena) Describe() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Arena start: %p\n", a.buf)
	fmt.Fprintf(&b, "Managed memory: %s (%d bytes)\n", humanize.IBytes(uint64(a.size)), a.size)
	fmt.Fprintf(&b, "Available memory: %s (%d bytes)\n", humanize.IBytes(uint64(a.avail)), a.avail)

	_ = a.VisitAllChunks(func(h Handle, offset, size int, free bool) error {
		state := "in use"
		if free {
			state = "free"
		}
		fmt.Fprintf(&b, "Chunk at %#08x: size %d, %s\n", offset, size, state)
		return nil
	})

	return b.String()
}

// PrintDetailedMap populates writer with a JSON report of the arena: summary
// counters followed by one object per chunk in offset order.
func (a *Arena) PrintDetailedMap(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	obj.Name("TotalBytes").Int(a.size)
	obj.Name("AvailableBytes").Int(a.avail)
	obj.Name("Allocations").Int(a.AllocationCount())
	obj.Name("UnusedRanges").Int(a.FreeRegionsCount())

	chunks := obj.Name("Chunks").Array()
	defer chunks.End()

	_ = a.VisitAllChunks(func(h Handle, offset, size int, free bool) error {
		chunkObj := chunks.Object()
		defer chunkObj.End()

		chunkObj.Name("Offset").Int(offset)
		chunkObj.Name("Size").Int(size)
		chunkObj.Name("InUse").Bool(!free)
		return nil
	})
}

// BuildStatsString returns the PrintDetailedMap report as a JSON string.
func (a *Arena) BuildStatsString() string {
	writer := jwriter.NewWriter()
	a.PrintDetailedMap(&writer)
	return string(writer.Bytes())
}

// AddStatistics sums this arena's allocation statistics into the statistics
// currently present in the provided memutils.Statistics object.
func (a *Arena) AddStatistics(stats *memutils.Statistics) {
	stats.BlockCount++
	stats.BlockBytes += a.size

	_ = a.VisitAllChunks(func(h Handle, offset, size int, free bool) error {
		if !free {
			stats.AllocationCount++
			stats.AllocationBytes += size
		}
		return nil
	})
}

// AddDetailedStatistics sums this arena's allocation statistics into the
// statistics currently present in the provided memutils.DetailedStatistics
// object.
func (a *Arena) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.Statistics.BlockCount++
	stats.Statistics.BlockBytes += a.size

	_ = a.VisitAllChunks(func(h Handle, offset, size int, free bool) error {
		if free {
			stats.AddUnusedRange(size)
		} else {
			stats.AddAllocation(size)
		}
		return nil
	})
}

// DebugLogAllAllocations calls logFunc once for every live allocation in the
// arena, in offset order.
func (a *Arena) DebugLogAllAllocations(logger *slog.Logger, logFunc func(log *slog.Logger, offset int, size int)) {
	_ = a.VisitAllChunks(func(h Handle, offset, size int, free bool) error {
		if !free {
			logFunc(logger, offset, size)
		}
		return nil
	})
}
