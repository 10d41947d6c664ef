package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aiba-2502/denco-notify/internal/core/config"
	"github.com/aiba-2502/denco-notify/internal/core/db"
	"github.com/aiba-2502/denco-notify/internal/core/logging"
	"github.com/aiba-2502/denco-notify/internal/dispatch"
	"github.com/aiba-2502/denco-notify/internal/engine"
	"github.com/aiba-2502/denco-notify/internal/senders"
	"github.com/aiba-2502/denco-notify/internal/types"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Consume inbound events from stdin and dispatch notifications",
	Long: `Reads InboundEvent JSON lines from stdin, evaluates each against the
active rule snapshot and writes one DeliveryOutcome JSON line per dispatched
action to stdout. The snapshot reloads periodically from the database.`,
	RunE: runEngine,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runEngine(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logging.New(logLevel, logFormat)

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}
	store, err := db.NewStore(queries, log)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	registry, err := buildSenders(cfg)
	if err != nil {
		return fmt.Errorf("failed to configure senders: %w", err)
	}

	dispatcher, err := dispatch.NewDispatcher(store, nil, registry, dispatch.RetryPolicy{
		MaxAttempts:    cfg.MaxSendAttempts,
		InitialBackoff: cfg.InitialBackoff,
		AttemptTimeout: cfg.AttemptTimeout,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	eng, err := engine.New(dispatcher, engine.Config{
		MaxConcurrentSends: cfg.MaxConcurrentSends,
		DedupTTL:           cfg.DedupTTL,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	refresher, err := engine.NewRefresher(ctx, store, cfg.SnapshotRefresh, log)
	if err != nil {
		return fmt.Errorf("failed to load initial snapshot: %w", err)
	}
	defer refresher.Stop()

	log.Infof("denco-notify v%s consuming events on stdin (channels: %v)", Version, registry.SupportedChannels())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down, draining in-flight sends")
		cancel()
	}()

	return consume(ctx, eng, refresher, os.Stdin, os.Stdout, log)
}

// consume reads events line by line until in closes or ctx cancels.
func consume(ctx context.Context, eng *engine.Engine, refresher *engine.Refresher, in io.Reader, out io.Writer, log *logrus.Logger) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), types.MaxTextLength+64*1024)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event types.InboundEvent
		if err := json.Unmarshal(line, &event); err != nil {
			log.Errorf("skipping undecodable event line: %v", err)
			continue
		}

		// Ids key the dedup cache; malformed ones never reach it.
		if _, err := types.ParseEventID(string(event.ID)); err != nil {
			log.Errorf("skipping event with malformed id %q: %v", event.ID, err)
			continue
		}

		outcomes := eng.Handle(ctx, &event, refresher.Current())
		for _, outcome := range outcomes {
			if err := encoder.Encode(outcome); err != nil {
				return fmt.Errorf("failed to write outcome: %w", err)
			}
		}
	}

	return scanner.Err()
}

// buildSenders wires the channel adapters that have configuration present.
// Unconfigured channels fall back to the console sender so development setups
// work without any transport credentials.
func buildSenders(cfg *config.EngineConfig) (*senders.Registry, error) {
	registry := senders.NewRegistry()

	if cfg.SMTP.Server != "" {
		smtpSender, err := senders.NewSMTPSender(cfg.SMTP)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(smtpSender); err != nil {
			return nil, err
		}
	} else {
		if err := registry.Register(senders.NewConsoleSender(types.ChannelEmail)); err != nil {
			return nil, err
		}
	}

	if cfg.Telegram.Token != "" {
		tgSender, err := senders.NewTelegramSender(cfg.Telegram.Token)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(tgSender); err != nil {
			return nil, err
		}
	} else {
		if err := registry.Register(senders.NewConsoleSender(types.ChannelChat)); err != nil {
			return nil, err
		}
	}

	// Messaging-app and voice gateways are external collaborators; the
	// console adapter stands in until the host wires real ones.
	if err := registry.Register(senders.NewConsoleSender(types.ChannelMessagingApp)); err != nil {
		return nil, err
	}
	if err := registry.Register(senders.NewConsoleSender(types.ChannelVoice)); err != nil {
		return nil, err
	}

	return registry, nil
}
