package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-dimmer/src/singleinstance"
)

type stressOptions struct {
	n        int
	mode     string
	deadline time.Duration
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-ipc",
		Short:         "Hammer the resident control port with concurrent clients",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.mode != "get" && opts.mode != "set" && opts.mode != "mixed" {
				return fmt.Errorf("unknown mode %q (want get|set|mixed)", opts.mode)
			}
			return runWithOptions(*opts, singleinstance.NewClient(), os.Stdout)
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.mode, "mode", "mixed", "get|set|mixed: request kind each client sends")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func requestFor(mode string, i int, rng *rand.Rand) singleinstance.Request {
	if mode == "get" || (mode == "mixed" && i%2 == 0) {
		return singleinstance.Request{Command: singleinstance.CmdGet}
	}
	return singleinstance.Request{Command: singleinstance.CmdSet, Percent: float64(rng.Intn(101))}
}

func runWithOptions(opts stressOptions, client singleinstance.Client, out io.Writer) error {
	var wg sync.WaitGroup
	var okCount int32
	var errCount int32

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	reqs := make([]singleinstance.Request, opts.n)
	for i := range reqs {
		reqs[i] = requestFor(opts.mode, i, rng)
	}

	start := time.Now()
	for _, req := range reqs {
		wg.Add(1)
		go func(req singleinstance.Request) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			if _, err := client.Do(ctx, req); err != nil {
				atomic.AddInt32(&errCount, 1)
				return
			}
			atomic.AddInt32(&okCount, 1)
		}(req)
	}
	wg.Wait()
	elapsed := time.Since(start)
	fmt.Fprintf(out, "launched=%d ok=%d err=%d elapsed=%s\n", opts.n, okCount, errCount, elapsed)
	return nil
}
