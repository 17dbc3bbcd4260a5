package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrinfinityjs/pyrewall/internal/adapters/input"
)

var (
	cfgFile string

	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pyrewall",
	Short: "Block source addresses that burst in the firewall log",
	Long: `pyrewall reads an iptables/ip6tables log once, finds every source address
with at least N matching events inside any window of the given length, and
adds each of them to a time-limited block set (ipset, nftables, a custom
command, or a NATS subject for a remote blocker).

IPv6 addresses go to the set named <set>_v6.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pyrewall %s\n", Version)
		fmt.Printf("Commit:  %s\n", Commit)
		fmt.Printf("Built:   %s\n", BuildTime)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./pyrewall.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file (rotated)")

	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.json", rootCmd.PersistentFlags().Lookup("log-json"))
	viper.BindPFlag("logging.file", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pyrewall")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/pyrewall")
	}

	viper.SetDefault("log.path", input.DefaultLogPath)
	viper.SetDefault("workers.count", 1)
	viper.SetDefault("sink.backend", "ipset")
	viper.SetDefault("sink.timeout", "5s")
	viper.SetDefault("sink.rate_per_second", 0)
	viper.SetDefault("sink.nft.family", "inet")
	viper.SetDefault("sink.nft.table", "filter")
	viper.SetDefault("sink.nats.subject", "pyrewall.block")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.max_size_mb", 10)
	viper.SetDefault("logging.max_backups", 3)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn().Err(err).Msg("Error reading config file")
		}
	}

	viper.SetEnvPrefix("PYREWALL")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
