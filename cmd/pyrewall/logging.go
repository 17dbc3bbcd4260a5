package main

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// setupLogging configures the global zerolog logger. The returned closer is
// the rotated log file, or nil when logging only goes to stderr.
func setupLogging() io.Closer {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch strings.ToLower(viper.GetString("logging.level")) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var console io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}
	if viper.GetBool("logging.json") {
		console = os.Stderr
	}

	path := viper.GetString("logging.file")
	if path == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return nil
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    viper.GetInt("logging.max_size_mb"),
		MaxBackups: viper.GetInt("logging.max_backups"),
		Compress:   viper.GetBool("logging.compress"),
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).With().Timestamp().Logger()
	return file
}
