package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/meshlink-protocol/meshlink-go/pkg/log"
)

// fileStats aggregates counters over one log file.
type fileStats struct {
	Total      int
	ByCategory map[string]int
	ByKind     map[string]int
	Sessions   map[string]int
	Errors     int
	RxFrames   int
	TxFrames   int
	First      time.Time
	Last       time.Time
}

// RunStats reads the whole log file and writes summary statistics to w.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	stats := fileStats{
		ByCategory: make(map[string]int),
		ByKind:     make(map[string]int),
		Sessions:   make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.Total++
		stats.ByCategory[event.Category.String()]++
		if event.SessionID != "" {
			stats.Sessions[event.SessionID]++
		}
		if event.Category == log.CategoryError {
			stats.Errors++
		}
		if event.Frame != nil {
			stats.ByKind[event.Frame.Kind]++
			switch event.Direction {
			case log.DirectionRx:
				stats.RxFrames++
			case log.DirectionTx:
				stats.TxFrames++
			}
		}
		if stats.First.IsZero() || event.Timestamp.Before(stats.First) {
			stats.First = event.Timestamp
		}
		if event.Timestamp.After(stats.Last) {
			stats.Last = event.Timestamp
		}
	}

	writeStats(w, stats)
	return nil
}

func writeStats(w io.Writer, stats fileStats) {
	fmt.Fprintf(w, "Events: %d\n", stats.Total)
	if stats.Total == 0 {
		return
	}

	fmt.Fprintf(w, "Time range: %s to %s (%s)\n",
		stats.First.UTC().Format(time.RFC3339),
		stats.Last.UTC().Format(time.RFC3339),
		stats.Last.Sub(stats.First).Round(time.Millisecond))
	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	fmt.Fprintf(w, "Frames: %d received, %d sent\n", stats.RxFrames, stats.TxFrames)
	fmt.Fprintf(w, "Errors: %d\n", stats.Errors)

	fmt.Fprintln(w, "\nBy category:")
	writeCounts(w, stats.ByCategory)

	if len(stats.ByKind) > 0 {
		fmt.Fprintln(w, "\nBy frame kind:")
		writeCounts(w, stats.ByKind)
	}
}

func writeCounts(w io.Writer, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		fmt.Fprintf(w, "  %-14s %d\n", k, counts[k])
	}
}
