package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/pipeswarm/pkg/history"
	"github.com/dd0wney/pipeswarm/pkg/stream"
)

func main() {
	var (
		follow = flag.String("follow", "", "Follow a live run published at this address instead of a file")
		speed  = flag.Duration("speed", 300*time.Millisecond, "Delay between turns while playing")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [history.pswh]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	var m model
	switch {
	case *follow != "":
		sub, err := stream.Dial(*follow)
		if err != nil {
			log.Fatalf("Failed to follow %s: %v", *follow, err)
		}
		defer sub.Close()
		m = newModel(*follow, "", nil)
		m.live = sub
	case flag.NArg() == 1:
		r, err := history.Open(flag.Arg(0))
		if err != nil {
			log.Fatalf("Failed to open history: %v", err)
		}
		records, err := r.Records()
		r.Close()
		if err != nil {
			log.Fatalf("Failed to read history: %v", err)
		}
		m = newModel(flag.Arg(0), r.RunID(), records)
	default:
		flag.Usage()
		os.Exit(2)
	}
	m.speed = *speed

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running TUI: %v", err)
	}
}
