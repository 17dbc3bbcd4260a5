package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrinfinityjs/pyrewall/internal/adapters/input"
	"github.com/mrinfinityjs/pyrewall/internal/adapters/output"
	"github.com/mrinfinityjs/pyrewall/internal/adapters/sink"
	"github.com/mrinfinityjs/pyrewall/internal/app"
	"github.com/mrinfinityjs/pyrewall/internal/ports"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the firewall log once and block bursting addresses",
	Long: `Read the whole firewall log, find addresses with at least --howmany
matching events within --within, and add them to --ipset for --removeafter.

Durations are an integer followed by s, m, h or d.

Examples:
  pyrewall scan --rule blocked --type tcp --howmany 10 --within 1m --ipset blacklist --removeafter 5h
  pyrewall scan --rule blocked --type udp --howmany 50 --within 10s --ipset blacklist --removeafter 1d --dryrun
  pyrewall scan --log ./iptables.log --rule blocked --type tcp --howmany 5 --within 30s \
      --ipset blacklist --removeafter 1h --sink nft --report run.json`,
	RunE: runScan,
}

func init() {
	f := scanCmd.Flags()
	f.String("rule", "", "firewall verdict to match: blocked or allowed")
	f.String("type", "", "protocol to match: tcp, udp or icmp")
	f.Int("howmany", 0, "minimum events inside the window to block an address")
	f.String("within", "", "window length, e.g. 30s, 1m, 2h")
	f.String("ipset", "", "block set name (IPv6 uses <name>_v6)")
	f.String("removeafter", "", "how long an address stays blocked, e.g. 5h, 1d")
	f.Bool("dryrun", false, "report what would be blocked without changing anything")
	f.StringP("log", "l", "", "firewall log to read (default /ram/iptables.log)")
	f.String("sink", "", "block backend: ipset, nft, command or nats")
	f.IntP("workers", "w", 0, "goroutines used to scan address timelines")
	f.String("report", "", "write a JSON or YAML run report to this file")
	f.String("metrics-textfile", "", "write Prometheus metrics to this textfile")
	f.Bool("demo", false, "scan synthetic log lines instead of a file")
	f.Bool("quiet", false, "do not print the console summary")

	bindings := map[string]string{
		"rule":                    "rule",
		"protocol":                "type",
		"threshold":               "howmany",
		"window":                  "within",
		"sink.name":               "ipset",
		"block_ttl":               "removeafter",
		"dry_run":                 "dryrun",
		"log.path":                "log",
		"sink.backend":            "sink",
		"workers.count":           "workers",
		"output.report.path":      "report",
		"output.metrics.textfile": "metrics-textfile",
	}
	for key, flag := range bindings {
		viper.BindPFlag(key, f.Lookup(flag))
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	if closer := setupLogging(); closer != nil {
		defer closer.Close()
	}

	cfg, err := app.ScanConfigFromViper()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	sinkCfg, err := sink.ConfigFromViper()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	blocklist, err := sink.New(sinkCfg)
	if err != nil {
		return fmt.Errorf("creating %s sink: %w", sinkCfg.Backend, err)
	}
	if c, ok := blocklist.(io.Closer); ok {
		defer c.Close()
	}

	var source ports.LineSource
	demo, _ := cmd.Flags().GetBool("demo")
	if demo {
		source = input.NewDemoGenerator(input.DefaultDemoConfig())
	} else {
		source = input.NewFileSource(cfg.LogPath, 0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := app.NewPipeline(cfg, source, input.NewFirewallLogParser(), blocklist)

	var metrics *output.ScanMetrics
	textfile := viper.GetString("output.metrics.textfile")
	if textfile != "" {
		metrics = output.NewScanMetrics("pyrewall")
		pipeline.AddObserver(metrics)
	}

	log.Info().
		Str("source", source.Name()).
		Str("sink", blocklist.Name()).
		Int("workers", cfg.Workers).
		Msg("pyrewall started")

	summary, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	var reporters []ports.Reporter
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		reporters = append(reporters, output.NewConsoleReporter(cmd.OutOrStdout()))
	}
	if path := viper.GetString("output.report.path"); path != "" {
		reporters = append(reporters, output.NewFileReporter(path))
	}
	for _, r := range reporters {
		if err := r.Report(summary); err != nil {
			log.Error().Err(err).Msg("Failed to write report")
		}
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(textfile); err != nil {
			log.Error().Err(err).Msg("Failed to write metrics")
		}
	}

	return nil
}
