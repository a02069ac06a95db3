package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/BTreeMap/DialogPipe/internal/dialog"
	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
	"github.com/BTreeMap/DialogPipe/internal/prompts"
	"github.com/BTreeMap/DialogPipe/internal/store"
	"github.com/BTreeMap/DialogPipe/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for DialogPipe state data
	DefaultStateDir = "/var/lib/dialogpipe"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "dialogpipe.db"
	// DefaultConversationKey identifies the console conversation
	DefaultConversationKey = "console-user"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	storage, closeStorage, err := openStorage(flags)
	if err != nil {
		slog.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	caps := prompts.NewChannelCapabilities()
	if *flags.capsFile != "" {
		if err := caps.LoadOverrides(*flags.capsFile); err != nil {
			slog.Error("Failed to load channel capability overrides", "error", err, "path", *flags.capsFile)
			os.Exit(1)
		}
	}

	runner, err := buildDialogRunner(storage, caps)
	if err != nil {
		slog.Error("Failed to assemble dialogs", "error", err)
		os.Exit(1)
	}

	slog.Info("Bootstrapping DialogPipe console loop", "conversation", *flags.conversation)
	if err := runConsoleLoop(context.Background(), runner, *flags.conversation); err != nil {
		slog.Error("DialogPipe failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("DialogPipe exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL  string
	StateDir     string
	CapsFile     string
	Conversation string
}

// Flags holds command line flag values
type Flags struct {
	stateDir     *string
	dbDSN        *string
	capsFile     *string
	conversation *string
}

// initializeLogger sets up structured logging; DIALOGPIPE_DEBUG enables debug level
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("DIALOGPIPE_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
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
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		StateDir:     util.ParseStringEnv("DIALOGPIPE_STATE_DIR", DefaultStateDir),
		CapsFile:     os.Getenv("DIALOGPIPE_CHANNEL_CAPS"),
		Conversation: util.ParseStringEnv("DIALOGPIPE_CONVERSATION", DefaultConversationKey),
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"DIALOGPIPE_STATE_DIR", config.StateDir,
		"DIALOGPIPE_CHANNEL_CAPS", config.CapsFile,
		"DIALOGPIPE_CONVERSATION", config.Conversation)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for DialogPipe data (overrides $DIALOGPIPE_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseURL, "database DSN for dialog state (overrides $DATABASE_URL)"),
		capsFile:     flag.String("channel-caps", config.CapsFile, "YAML file with channel capability overrides (overrides $DIALOGPIPE_CHANNEL_CAPS)"),
		conversation: flag.String("conversation", config.Conversation, "conversation key for the console session (overrides $DIALOGPIPE_CONVERSATION)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"capsFile", *flags.capsFile,
		"conversation", *flags.conversation)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "dsn_updated", true, "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) != "postgres" {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// openStorage opens the configured dialog state store
func openStorage(flags Flags) (store.Storage, func(), error) {
	if *flags.dbDSN == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), func() {}, nil
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql")
		st, err := store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
	st, err := store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
	if err != nil {
		return nil, nil, err
	}
	return st, func() { st.Close() }, nil
}

// buildDialogRunner assembles the demo ordering conversation: a component
// wrapping a waterfall that chains a choice, number, and confirm prompt.
func buildDialogRunner(storage store.Storage, caps *prompts.ChannelCapabilities) (*dialog.DialogRunner, error) {
	sizePrompt := prompts.NewChoicePrompt("sizePrompt", nil)
	sizePrompt.SetCapabilities(caps)
	quantityPrompt := prompts.NewNumberPrompt("quantityPrompt", func(ctx context.Context, pvc *prompts.PromptValidatorContext[float64]) (bool, error) {
		if !pvc.Recognized.Succeeded {
			return false, nil
		}
		n := pvc.Recognized.Value
		return n >= 1 && n <= 12, nil
	})
	confirmPrompt := prompts.NewConfirmPrompt("confirmPrompt", nil)
	confirmPrompt.SetCapabilities(caps)

	order := dialog.NewWaterfallDialog("orderWaterfall",
		func(ctx context.Context, sc *dialog.WaterfallStepContext) (models.DialogTurnResult, error) {
			return sc.Prompt(ctx, "sizePrompt", &prompts.PromptOptions{
				Prompt: models.NewMessage("What size pizza would you like?"),
				Choices: []models.Choice{
					{Value: "Small"},
					{Value: "Medium"},
					{Value: "Large"},
				},
			})
		},
		func(ctx context.Context, sc *dialog.WaterfallStepContext) (models.DialogTurnResult, error) {
			if choice, ok := sc.Result.(models.FoundChoice); ok {
				sc.Values["size"] = choice.Value
			}
			return sc.Prompt(ctx, "quantityPrompt", &prompts.PromptOptions{
				Prompt:      models.NewMessage("How many would you like? (1-12)"),
				RetryPrompt: models.NewMessage("Please give me a number between 1 and 12."),
			})
		},
		func(ctx context.Context, sc *dialog.WaterfallStepContext) (models.DialogTurnResult, error) {
			if n, ok := sc.Result.(float64); ok {
				sc.Values["quantity"] = n
			}
			size, _ := sc.Values["size"].(string)
			return sc.Prompt(ctx, "confirmPrompt", &prompts.PromptOptions{
				Prompt: models.NewMessage(fmt.Sprintf("Order %v %s pizza(s)?", sc.Values["quantity"], size)),
			})
		},
		func(ctx context.Context, sc *dialog.WaterfallStepContext) (models.DialogTurnResult, error) {
			confirmed, _ := sc.Result.(bool)
			if confirmed {
				if err := sc.Turn.SendText(ctx, "Great, your order is in!"); err != nil {
					return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty}, err
				}
			} else {
				if err := sc.Turn.SendText(ctx, "Okay, order cancelled."); err != nil {
					return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty}, err
				}
			}
			return sc.EndDialog(ctx, confirmed)
		},
	)

	root := dialog.NewComponentDialog("orderPizza")
	for _, d := range []dialog.Dialog{order, sizePrompt, quantityPrompt, confirmPrompt} {
		if err := root.AddDialog(d); err != nil {
			return nil, err
		}
	}

	accessor := dialog.NewDialogStateAccessor(storage)
	set := dialog.NewDialogSet(accessor)
	if err := set.Add(root); err != nil {
		return nil, err
	}
	return dialog.NewDialogRunner(set, root.ID()), nil
}

// runConsoleLoop reads lines from stdin and runs one dialog turn per line.
func runConsoleLoop(ctx context.Context, runner *dialog.DialogRunner, conversationKey string) error {
	sender := messaging.NewConsoleSender(os.Stdout)
	fmt.Println("DialogPipe console. Type a message and press enter; Ctrl-D exits.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		msg := models.NewMessage(text)
		msg.ChannelID = models.ChannelConsole
		msg.Conversation = models.ConversationAccount{ID: conversationKey}

		tc := messaging.NewTurnContext(conversationKey, msg, sender)
		result, err := runner.RunTurn(ctx, tc)
		if err != nil {
			slog.Error("Turn failed", "error", err, "turnID", tc.TurnID)
			continue
		}
		if result.Status == models.DialogTurnStatusComplete {
			slog.Info("Conversation completed", "result", result.Result)
		}
	}
	return scanner.Err()
}
