package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rubdev/labelctl/internal/config"
	"github.com/rubdev/labelctl/internal/discovery"
	"github.com/rubdev/labelctl/internal/logging"
	"github.com/rubdev/labelctl/internal/protocol"
	"github.com/rubdev/labelctl/internal/readiness"
	"github.com/rubdev/labelctl/internal/transport"
	"github.com/rubdev/labelctl/internal/workflow"
)

const usage = `usage: labelctl [-config file] <command> [args]

commands:
  discover   probe candidate hosts and rank reachable printers
  status     read printer readiness for an address
  print      send a label payload to a printer
  calibrate  run a media calibration pass
  media      configure the media handling preset and darkness
`

func main() {
	logger := logging.ConfigureRuntime("labelctl")

	configPath := flag.String("config", "", "path to labelctl.toml")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "labelctl: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "discover":
		err = runDiscover(ctx, cfg, args[1:])
	case "status":
		err = runStatus(ctx, cfg, args[1:])
	case "print":
		err = runPrint(ctx, cfg, args[1:])
	case "calibrate":
		err = runCalibrate(ctx, cfg, args[1:])
	case "media":
		err = runMedia(ctx, cfg, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "labelctl: %v\n", err)
		os.Exit(1)
	}
}

func runDiscover(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	timeout := fs.Duration("timeout", 0, "per-host probe timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	hosts := fs.Args()
	if len(hosts) == 0 {
		hosts = cfg.Hosts
	}
	if len(hosts) == 0 {
		return fmt.Errorf("no candidate hosts given")
	}

	probeCfg := discovery.DefaultProbeConfig()
	if *timeout > 0 {
		probeCfg.Timeout = *timeout
	}
	devices := discovery.ProbeNetwork(ctx, hosts, probeCfg, logging.ConfigureRuntime("labelctl"))
	if len(devices) == 0 {
		fmt.Println("no printers found")
		return nil
	}

	selector := discovery.NewSelector(discovery.DefaultWeights(), discovery.NewMemoryHistory())
	sel := selector.Select(devices, nil, cfg.Preferred)
	for _, sd := range sel.Ranked {
		marker := " "
		if sel.Selected && discovery.SameDevice(sd.Device, sel.Best.Device) {
			marker = "*"
		}
		fmt.Printf("%s %-24s %-10s score=%.0f\n", marker, sd.Device.Address, sd.Device.Kind, sd.Score)
	}
	return nil
}

func runStatus(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	address := pickAddress(cfg, fs.Args())
	if address == "" {
		return fmt.Errorf("no printer address given")
	}

	logger := logging.ConfigureRuntime("labelctl")
	tr := transport.NewTCP(cfg.Transport, logger)
	if err := tr.Connect(ctx, address); err != nil {
		return err
	}
	defer func() { _ = tr.Disconnect() }()

	eval := readiness.NewEvaluator(tr, logger)
	snap := eval.ReadAllStatuses(ctx, cfg.Workflow.Readiness)
	printSnapshot(snap, cfg.Workflow.Readiness)
	return nil
}

func runPrint(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("print", flag.ExitOnError)
	file := fs.String("file", "", "payload file (defaults to stdin)")
	address := fs.String("address", "", "printer address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	target := *address
	if target == "" {
		target = pickAddress(cfg, fs.Args())
	}
	if target == "" {
		return fmt.Errorf("no printer address given")
	}

	data, err := readPayload(*file)
	if err != nil {
		return err
	}

	logger := logging.ConfigureRuntime("labelctl")
	opts := cfg.Workflow
	opts.Notify = func(ev workflow.Event) {
		switch ev.Kind {
		case workflow.EventStepChanged:
			fmt.Printf("[%3.0f%%] %s: %s\n", ev.Progress*100, ev.Step, ev.Message)
		case workflow.EventRetryAttempt:
			fmt.Printf("       retry %d/%d\n", ev.Attempt, ev.MaxAttempts)
		case workflow.EventStatusUpdate:
			fmt.Printf("       %s\n", ev.Message)
		}
	}
	machine := workflow.New(transport.NewTCP(cfg.Transport, logger), logger, opts)

	start := time.Now()
	final, err := machine.Run(ctx, workflow.Job{Address: target, Data: data})
	if err != nil {
		if final.Fault != nil && final.Fault.Hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", final.Fault.Hint)
		}
		return err
	}
	fmt.Printf("done in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func runCalibrate(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("calibrate", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	address := pickAddress(cfg, fs.Args())
	if address == "" {
		return fmt.Errorf("no printer address given")
	}

	logger := logging.ConfigureRuntime("labelctl")
	tr := transport.NewTCP(cfg.Transport, logger)
	if err := tr.Connect(ctx, address); err != nil {
		return err
	}
	defer func() { _ = tr.Disconnect() }()
	if err := tr.SendRaw(ctx, protocol.CmdCalibrate); err != nil {
		return err
	}
	fmt.Println("calibration started")
	return nil
}

func runMedia(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("media", flag.ExitOnError)
	preset := fs.String("type", "label", "media preset: label | blackmark | journal")
	darkness := fs.Int("darkness", -1, "print tone, 0-30 (negative keeps the current setting)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	address := pickAddress(cfg, fs.Args())
	if address == "" {
		return fmt.Errorf("no printer address given")
	}

	cmds := protocol.MediaTypeCommands(protocol.MediaType(*preset))
	if cmds == nil {
		return fmt.Errorf("unknown media type %q", *preset)
	}
	if *darkness >= 0 {
		tone := protocol.DarknessCommand(*darkness)
		if tone == nil {
			return fmt.Errorf("darkness %d out of range %d-%d", *darkness, protocol.MinDarkness, protocol.MaxDarkness)
		}
		cmds = append(cmds, tone...)
	}

	logger := logging.ConfigureRuntime("labelctl")
	tr := transport.NewTCP(cfg.Transport, logger)
	if err := tr.Connect(ctx, address); err != nil {
		return err
	}
	defer func() { _ = tr.Disconnect() }()
	if err := tr.SendRaw(ctx, cmds); err != nil {
		return err
	}
	fmt.Println("media configuration sent")
	return nil
}

func pickAddress(cfg config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Address
}

func readPayload(path string) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return data, nil
}

func printSnapshot(snap readiness.Readiness, opts readiness.Options) {
	for _, dim := range readiness.Dimensions {
		if !opts.Checks(dim) {
			continue
		}
		c := snap.Get(dim)
		state := "unchecked"
		switch {
		case c.Known && c.OK:
			state = "ok"
		case c.Known:
			state = "fault"
		}
		if c.Detail != "" {
			fmt.Printf("%-12s %-9s %s\n", dim, state, c.Detail)
		} else {
			fmt.Printf("%-12s %s\n", dim, state)
		}
	}
	if snap.Ready(opts) {
		fmt.Println("printer is ready")
	} else {
		fmt.Println("printer is NOT ready")
	}
}
