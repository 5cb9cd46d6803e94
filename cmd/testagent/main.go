// Testagent is a stand-in for the real coding agent, for exercising the
// supervision pipeline end to end without spending agent runtime. It
// accepts the same flags the runner passes to the real agent and
// behaves according to TESTAGENT_MODE:
//
//	ok     print the received prompt length and exit 0 (default)
//	fail   print a diagnostic to stderr and exit 1
//	sleep  sleep TESTAGENT_SLEEP seconds (default 30), for timeout runs
//
// Example:
//
//	DEVRUNNER_AGENT_PATH=$(go env GOPATH)/bin/testagent TESTAGENT_MODE=sleep devrunnerd
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

func main() {
	prompt := flag.String("p", "", "Prompt text")
	flag.Bool("dangerously-skip-permissions", false, "Accepted for compatibility")
	flag.Parse()

	mode := os.Getenv("TESTAGENT_MODE")
	switch mode {
	case "", "ok":
		fmt.Printf("testagent: received prompt of %d bytes\n", len(*prompt))
		fmt.Println("done")
	case "fail":
		fmt.Fprintln(os.Stderr, "testagent: simulated agent failure")
		os.Exit(1)
	case "sleep":
		secs := 30
		if raw := os.Getenv("TESTAGENT_SLEEP"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				secs = n
			}
		}
		time.Sleep(time.Duration(secs) * time.Second)
	default:
		fmt.Fprintf(os.Stderr, "testagent: unknown mode %q\n", mode)
		os.Exit(2)
	}
}
