package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/jnetcce/archive"
	"github.com/s0up4200/jnetcce/cce"
	"github.com/s0up4200/jnetcce/config"
	"github.com/s0up4200/jnetcce/loopback"
	"github.com/s0up4200/jnetcce/soap"
)

var (
	cfgFile      string
	cfg          *config.Config
	logger       zerolog.Logger
	client       *cce.Client
	store        *archive.Store
	outputFormat string
	environment  string

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "jnetcce",
	Short: "Request and collect court case events from JNET",
	Long: `jnetcce submits court case event lookups to the JNET CCE service by docket
number, offense tracking number or participant, watches the request queue,
and retrieves the finished documents exactly once.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion records build information shown by the version command
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVarP(&environment, "env", "e", "", "override jnet.environment (production, beta or loopback)")

	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(retrieveCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd == versionCmd {
		return nil
	}
	if err := validateOutputFormat(outputFormat); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if environment != "" {
		cfg.JNET.Environment = config.NormalizeEnvironment(environment)
	}

	logger = setupLogger(cfg.Logging)

	transport, err := newTransport(cfg.JNET)
	if err != nil {
		return err
	}

	trackingIDs, err := cce.CorrelationIDsByName(cfg.Queue.TrackingIDs)
	if err != nil {
		return err
	}

	opts := []cce.Option{
		cce.WithRecordLimit(cfg.Queue.RecordLimit),
		cce.WithGracePeriod(cfg.Queue.GracePeriod),
		cce.WithPollInterval(cfg.Queue.PollInterval),
		cce.WithFetchTimeout(cfg.Queue.FetchTimeout),
		cce.WithCorrelationIDs(trackingIDs),
	}

	if cfg.Archive.Enabled {
		store, err = archive.Open(cfg.Archive.Path, logger)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		opts = append(opts, cce.WithLedger(store))
	}

	client, err = cce.NewClient(transport, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	logger.Debug().
		Str("environment", cfg.JNET.Environment).
		Bool("archive", store != nil).
		Msg("Client ready")
	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if store != nil {
		return store.Close()
	}
	return nil
}

// newTransport builds the transport for the configured environment
func newTransport(c config.JNETConfig) (cce.Transport, error) {
	switch c.Environment {
	case config.EnvironmentLoopback:
		logger.Warn().Msg("Using the in-process loopback queue, nothing is sent to JNET")
		return loopback.NewQueue(loopback.WithProcessingDelay(2 * time.Second)), nil
	case config.EnvironmentProduction, config.EnvironmentBeta:
	default:
		return nil, fmt.Errorf("unknown environment %q", c.Environment)
	}

	base := c.Endpoint
	if base == "" {
		base = soap.ResolveBase(c.Environment)
	}

	var opts []soap.Option
	opts = append(opts, soap.WithTimeout(c.Timeout))
	if c.ClientCertificate != "" {
		opts = append(opts, soap.WithClientCertificate(c.ClientCertificate, c.ClientKey))
	}
	if c.ServerCertificate != "" {
		opts = append(opts, soap.WithServerCertificate(c.ServerCertificate))
	}
	if c.InsecureSkipVerify {
		opts = append(opts, soap.WithInsecureSkipVerify())
	}
	if c.RequestsPerSecond > 0 {
		opts = append(opts, soap.WithRateLimit(c.RequestsPerSecond, 1))
	}

	transport, err := soap.NewClient(soap.EndpointURL(base), c.UserID, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create JNET client: %w", err)
	}
	return transport, nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jnetcce %s (built %s)\n", version, buildTime)
	},
}
