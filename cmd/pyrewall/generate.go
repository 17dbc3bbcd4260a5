package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mrinfinityjs/pyrewall/internal/adapters/input"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic iptables log for testing",
	Long: `Write synthetic iptables/ip6tables log lines: background noise from many
addresses plus dense bursts from a handful of attackers.

Examples:
  pyrewall generate --lines 50000 --output /tmp/iptables.log
  pyrewall generate --lines 1000 --attack-percent 40 --seed 7`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.Int("lines", 10000, "number of lines to write")
	f.Int("attack-percent", 15, "share of lines coming from attacking addresses")
	f.Duration("span", time.Hour, "time covered by the generated lines, ending now")
	f.Int64("seed", 0, "random seed (0 picks one)")
	f.StringP("output", "o", "", "output file (default stdout)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if closer := setupLogging(); closer != nil {
		defer closer.Close()
	}

	f := cmd.Flags()
	lines, _ := f.GetInt("lines")
	attack, _ := f.GetInt("attack-percent")
	span, _ := f.GetDuration("span")
	seed, _ := f.GetInt64("seed")
	path, _ := f.GetString("output")

	gen := input.NewDemoGenerator(input.DemoConfig{
		Lines:         lines,
		AttackPercent: attack,
		Start:         time.Now().Add(-span),
		Span:          span,
		Seed:          seed,
	})

	out := cmd.OutOrStdout()
	if path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer file.Close()
		out = file
	}

	w := bufio.NewWriter(out)
	if err := gen.Generate(w); err != nil {
		return fmt.Errorf("generating log: %w", err)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if path != "" {
		log.Info().Int("lines", lines).Str("path", path).Msg("Synthetic log written")
	}
	return nil
}
