package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/nekohub/internal/config"
	"github.com/me/nekohub/internal/logging"
	"github.com/me/nekohub/pkg/posts"
)

var (
	flagServer    string
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagLogFile   string
	flagOutput    string
	flagAssumeYes bool

	cfg       config.ClientConfig
	logger    *slog.Logger
	logCloser io.Closer
	client    *posts.Client
)

// NewRootCmd creates the root cobra command for the nekohub CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nekohub",
		Short: "Browse and edit posts on a nekohub server",
		Long:  "nekohub lists, shows, creates, edits, publishes and deletes posts on a nekohub posts API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				logCloser.Close()
				logCloser = nil
			}
		},
		SilenceUsage: true,
	}

	defaultPath, _ := config.DefaultPath()

	pf := root.PersistentFlags()
	pf.StringVar(&flagServer, "server", "", "Posts API base URL (or NEKOHUB_SERVER env)")
	pf.StringVar(&flagConfig, "config", defaultPath, "Config file path")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")
	pf.StringVar(&flagLogFile, "log-file", "", "Write logs to a rotating file instead of stderr")
	pf.StringVarP(&flagOutput, "output", "o", "text", "Output format (text, json, yaml)")
	pf.BoolVarP(&flagAssumeYes, "yes", "y", false, "Answer yes to confirmation prompts")

	root.AddCommand(
		newListCmd(),
		newShowCmd(),
		newCreateCmd(),
		newEditCmd(),
		newPatchCmd(),
		newDeleteCmd(),
		newPublishCmd(true),
		newPublishCmd(false),
		newToggleCmd(),
		newStatsCmd(),
		newConfigCmd(),
	)

	return root
}

// setup resolves configuration and builds the logger and API client shared
// by all subcommands.
func setup(cmd *cobra.Command) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	if flagServer != "" {
		cfg.Server = flagServer
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagDebug {
		cfg.LogLevel = "debug"
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		logger, logCloser = logging.NewFileLogger(level, cfg.LogFormat, logging.DefaultFileOptions(cfg.LogFile))
	} else {
		logger = logging.NewLoggerWithWriter(level, cfg.LogFormat, cmd.ErrOrStderr())
	}

	switch flagOutput {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", flagOutput)
	}

	client, err = posts.NewClient(cfg.PostsConfig(), logger)
	if err != nil {
		return err
	}
	logger.Debug("client ready", "server", client.BaseURL(), "timeout", cfg.Timeout)
	return nil
}
