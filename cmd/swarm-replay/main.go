package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dd0wney/pipeswarm/pkg/history"
	"github.com/dd0wney/pipeswarm/pkg/simulation"
)

func main() {
	var (
		turn    = flag.Int("turn", -1, "Print only this turn")
		compare = flag.String("compare", "", "Second history file; exit 1 if the runs differ")
		quiet   = flag.Bool("quiet", false, "Print the header and digest only")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] history.pswh\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	records, runID, err := load(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read history: %v", err)
	}
	digest, err := history.Digest(records)
	if err != nil {
		log.Fatalf("Failed to digest history: %v", err)
	}

	fmt.Printf("run %s: %d records, digest %s\n", runID, len(records), digest)
	if !*quiet {
		for _, rec := range records {
			if *turn >= 0 && rec.Turn != *turn {
				continue
			}
			printRecord(rec)
		}
	}

	if *compare == "" {
		return
	}
	other, otherID, err := load(*compare)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *compare, err)
	}
	otherDigest, err := history.Digest(other)
	if err != nil {
		log.Fatalf("Failed to digest %s: %v", *compare, err)
	}
	if otherDigest != digest {
		fmt.Printf("runs differ: %s (%s) vs %s (%s)\n", runID, digest, otherID, otherDigest)
		if i, ok := firstDivergence(records, other); ok {
			fmt.Printf("first divergence at record %d\n", i)
		}
		os.Exit(1)
	}
	fmt.Printf("runs identical: %s and %s\n", runID, otherID)
}

func load(path string) ([]simulation.TurnRecord, string, error) {
	r, err := history.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer r.Close()
	records, err := r.Records()
	if err != nil {
		return nil, "", err
	}
	return records, r.RunID(), nil
}

func printRecord(rec simulation.TurnRecord) {
	fmt.Printf("turn %3d  coverage %5.1f%%  [%s]\n", rec.Turn, rec.Coverage*100, strings.Join(rec.Positions, " "))
	if len(rec.Idle) > 0 {
		fmt.Printf("          idle %v\n", rec.Idle)
	}
	for _, m := range rec.Meetings {
		fmt.Printf("          meeting %v at %v leader %d", m.Members, m.Nodes, m.Leader)
		if len(m.Assignments) > 0 {
			fmt.Printf(" tasks %v", m.Assignments)
		}
		fmt.Println()
	}
}

// firstDivergence returns the first record index where a and b differ
func firstDivergence(a, b []simulation.TurnRecord) (int, bool) {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		da, errA := history.Digest(a[i : i+1])
		db, errB := history.Digest(b[i : i+1])
		if errA != nil || errB != nil || da != db {
			return i, true
		}
	}
	if len(a) != len(b) {
		return n, true
	}
	return 0, false
}
