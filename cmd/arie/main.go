package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/arielabs/arie/internal/api"
	"github.com/arielabs/arie/internal/flow"
	"github.com/arielabs/arie/internal/genai"
	"github.com/arielabs/arie/internal/messaging"
	"github.com/arielabs/arie/internal/nlu"
	"github.com/arielabs/arie/internal/notify"
	"github.com/arielabs/arie/internal/store"
	"github.com/arielabs/arie/internal/twiliosms"
	"github.com/arielabs/arie/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Arie state data
	DefaultStateDir = "/var/lib/arie"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "arie.db"
	// DefaultNLUTimeout bounds classifier and scorer calls
	DefaultNLUTimeout = 10 * time.Second
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := run(flags); err != nil {
		slog.Error("Arie failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Arie exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL string
	StateDir    string
	OpenAIKey   string
	APIAddr     string
	NLUTimeout  time.Duration
}

// Flags holds command line flag values
type Flags struct {
	stateDir   *string
	dbDSN      *string
	openaiKey  *string
	apiAddr    *string
	nluTimeout *time.Duration
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("ARIE_STATE_DIR"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		APIAddr:     os.Getenv("API_ADDR"),
		NLUTimeout:  util.ParseDurationEnv("NLU_TIMEOUT", DefaultNLUTimeout),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No ARIE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"ARIE_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"NLU_TIMEOUT", config.NLUTimeout)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:   flag.String("state-dir", config.StateDir, "state directory for Arie data (overrides $ARIE_STATE_DIR)"),
		dbDSN:      flag.String("db-dsn", config.DatabaseURL, "database DSN for the state store (overrides $DATABASE_URL)"),
		openaiKey:  flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		apiAddr:    flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		nluTimeout: flag.Duration("nlu-timeout", config.NLUTimeout, "timeout for classifier and scorer calls (overrides $NLU_TIMEOUT)"),
	}

	flag.Parse()

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"nluTimeout", *flags.nluTimeout)

	return flags
}

// buildStore selects and constructs the store backend from the DSN
func buildStore(flags Flags) (store.Store, error) {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
}

// run wires all modules together and starts the API server
func run(flags Flags) error {
	st, err := buildStore(flags)
	if err != nil {
		return err
	}
	defer st.Close()

	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	genaiOpts = append(genaiOpts, genai.WithTimeout(*flags.nluTimeout))
	genaiClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return err
	}

	twilioClient, err := twiliosms.NewClient()
	if err != nil {
		return err
	}

	classifier := nlu.NewIntentClassifier(genaiClient)
	scorer := nlu.NewSentimentScorer(genaiClient)

	states := flow.NewStateManager(st)
	dispatcher := flow.NewDispatcher(
		states,
		flow.NewIntakeEngine(classifier),
		flow.NewCheckinEngine(classifier, scorer),
		notify.NewTwilioNotifier(twilioClient),
	)

	handler := messaging.NewHandler(dispatcher, messaging.NewTwilioService(twilioClient))

	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	slog.Info("Bootstrapping Arie with configured modules")
	return api.NewServer(handler, states, apiOpts...).Run()
}
