package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screen-dimmer/src/eventloop"
	"screen-dimmer/src/runtimeinit"
	"screen-dimmer/src/singleinstance"
)

type cliOptions struct {
	timeout    time.Duration
	jsonOutput bool
	verbose    bool
	hold       bool
}

// deps are the pieces the commands talk to; tests replace them.
type deps struct {
	client singleinstance.Client
	stdout io.Writer
	// hold runs a standalone overlay at percent until ctx is done.
	hold func(ctx context.Context, percent float64) error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	d := deps{client: singleinstance.NewClient(), stdout: os.Stdout, hold: holdStandalone}
	return runWithArgs(normalizeLegacyArgs(os.Args), d)
}

func runWithArgs(args []string, d deps) error {
	if len(args) == 0 {
		args = []string{"dimctl"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, d)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dimctl",
		Short:         "Control a running Screen Dimmer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 3*time.Second, "How long to wait for the resident")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	setCmd := &cobra.Command{
		Use:   "set <percent>",
		Short: "Set brightness (0-100, 100 = no dimming)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			percent, err := singleinstance.ParsePercent(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			v, err := d.client.Do(ctx, singleinstance.Request{Command: singleinstance.CmdSet, Percent: percent})
			if errors.Is(err, singleinstance.ErrNoResident) && opts.hold {
				fmt.Fprintln(cmd.ErrOrStderr(), "No resident running; holding a standalone overlay until Ctrl+C")
				return d.hold(cmd.Context(), percent)
			}
			if err != nil {
				return err
			}
			return printBrightness(d.stdout, v, opts.jsonOutput)
		},
	}
	setCmd.Flags().BoolVar(&opts.hold, "hold", false, "Without a resident, dim from this process and serve the control port until interrupted")

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Print current brightness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAndPrint(cmd.Context(), d, *opts, singleinstance.Request{Command: singleinstance.CmdGet})
		},
	}

	offCmd := &cobra.Command{
		Use:   "off",
		Short: "Remove the overlay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAndPrint(cmd.Context(), d, *opts, singleinstance.Request{Command: singleinstance.CmdOff})
		},
	}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check whether a resident is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			port, id, err := d.client.Ping(ctx)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(d.stdout, pingResult{Port: port, InstanceID: id})
			}
			fmt.Fprintf(d.stdout, "resident %s on port %d\n", id, port)
			return nil
		},
	}

	cmd.AddCommand(setCmd, getCmd, offCmd, pingCmd)
	return cmd
}

func doAndPrint(parent context.Context, d deps, opts cliOptions, req singleinstance.Request) error {
	ctx, cancel := context.WithTimeout(parent, opts.timeout)
	defer cancel()
	v, err := d.client.Do(ctx, req)
	if err != nil {
		return err
	}
	return printBrightness(d.stdout, v, opts.jsonOutput)
}

type brightnessResult struct {
	Brightness float64 `json:"brightness"`
}

type pingResult struct {
	Port       int    `json:"port"`
	InstanceID string `json:"instance_id"`
}

func printBrightness(w io.Writer, v float64, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, brightnessResult{Brightness: v})
	}
	_, err := fmt.Fprintf(w, "%g\n", v)
	return err
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

// holdStandalone owns an overlay in this process until interrupted.
func holdStandalone(ctx context.Context, percent float64) error {
	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{})
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return holdWith(ctx, rt, percent)
}

// holdWith applies percent and serves the control port until ctx is done,
// so other dimctl calls reach this process and a resident started later sees
// an instance is already running.
func holdWith(ctx context.Context, rt *runtimeinit.Runtime, percent float64) error {
	if err := rt.Controller.SetOverlayBrightness(percent); err != nil {
		return err
	}
	defer func() {
		if err := rt.Controller.Close(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	loop := eventloop.New(rt.Controller, eventloop.Options{StepPercent: rt.Config.StepPercent})
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("control port: %w", err)
	}
	return nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"timeout", "json", "verbose", "hold"} {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
