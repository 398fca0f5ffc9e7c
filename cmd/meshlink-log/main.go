// Command meshlink-log is a tool for viewing and analyzing meshlink protocol
// log files.
//
// Log files are created by running meshlink-monitor with the -protocol-log
// flag, or by wiring a FileLogger into a session's options.
//
// Usage:
//
//	meshlink-log <command> [flags] <file.meshlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	meshlink-log view session.meshlog
//
//	# View only received frames
//	meshlink-log view --direction rx --category frame session.meshlog
//
//	# Export to JSONL
//	meshlink-log export --format jsonl session.meshlog
//
//	# Filter by node and save to new file
//	meshlink-log filter --node 0x10 -o node.meshlog session.meshlog
//
//	# Show statistics
//	meshlink-log stats session.meshlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/meshlink-protocol/meshlink-go/cmd/meshlink-log/commands"
)

const usage = `meshlink-log - Meshlink Protocol Log Analyzer

Usage:
  meshlink-log <command> [flags] <file.meshlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "meshlink-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on fs.
type filterFlags struct {
	session   *string
	direction *string
	layer     *string
	category  *string
	node      *string
	timeStart *string
	timeEnd   *string
}

func registerFilterFlags(fs *flag.FlagSet) filterFlags {
	return filterFlags{
		session:   fs.String("session", "", "Filter by session ID"),
		direction: fs.String("direction", "", "Filter by direction (rx, tx)"),
		layer:     fs.String("layer", "", "Filter by layer (transport, frame, session)"),
		category:  fs.String("category", "", "Filter by category (frame, control, state, error)"),
		node:      fs.String("node", "", "Filter by node number (decimal or 0x hex)"),
		timeStart: fs.String("time-start", "", "Filter by start time (RFC3339)"),
		timeEnd:   fs.String("time-end", "", "Filter by end time (RFC3339)"),
	}
}

func (ff filterFlags) build() (commands.EventFilter, error) {
	return commands.ParseFilter(commands.FilterOptions{
		SessionID: *ff.session,
		Direction: *ff.direction,
		Layer:     *ff.layer,
		Category:  *ff.category,
		Node:      *ff.node,
		TimeStart: *ff.timeStart,
		TimeEnd:   *ff.timeEnd,
	})
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	ff := registerFilterFlags(fs)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, "meshlink-log view - View log file in human-readable format\n\nUsage:\n  meshlink-log view [flags] <file.meshlog>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireFile(fs)

	filter, err := ff.build()
	if err != nil {
		fatal(err)
	}
	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	ff := registerFilterFlags(fs)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, "meshlink-log export - Export log file to JSONL or CSV format\n\nUsage:\n  meshlink-log export [flags] <file.meshlog>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireFile(fs)

	filter, err := ff.build()
	if err != nil {
		fatal(err)
	}
	if err := commands.RunExport(path, filter, *format, *output); err != nil {
		fatal(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	output := fs.String("o", "", "Output file (required)")
	ff := registerFilterFlags(fs)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, "meshlink-log filter - Filter log file and write to new file\n\nUsage:\n  meshlink-log filter [flags] <file.meshlog>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}
	path := requireFile(fs)

	filter, err := ff.build()
	if err != nil {
		fatal(err)
	}
	if err := commands.RunFilter(path, filter, *output); err != nil {
		fatal(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, "meshlink-log stats - Show statistics about the log file\n\nUsage:\n  meshlink-log stats <file.meshlog>\n\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireFile(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fatal(err)
	}
}

func requireFile(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
