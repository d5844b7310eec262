// cmd/wanted-applier/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"wanted-applier/internal/common/auth"
	"wanted-applier/internal/common/aws"
	"wanted-applier/internal/common/config"
	"wanted-applier/internal/common/database"
	apperrors "wanted-applier/internal/common/errors"
	apphttp "wanted-applier/internal/common/http"
	"wanted-applier/internal/common/logger"
	"wanted-applier/internal/common/metrics"
	"wanted-applier/internal/common/observability"
	"wanted-applier/internal/common/progress"
	"wanted-applier/internal/models"
	"wanted-applier/internal/pipeline"
	"wanted-applier/pkg/registry"

	lp "wanted-applier/internal/workers/account/load-profile"
	al "wanted-applier/internal/workers/listing/apply-listings"
	fl "wanted-applier/internal/workers/listing/filter-listings"
	rl "wanted-applier/internal/workers/listing/retrieve-listings"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := pflag.NewFlagSet("wanted-applier", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	loader := config.NewLoader()
	if err := loader.BindFlags(fs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	configPath, _ := fs.GetString("config")

	cfg, err := loader.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		return 1
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("Starting wanted-applier", map[string]interface{}{
		"config":  loader.File(),
		"workers": cfg.Concurrency.Workers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Search criteria ---
	reg := registry.Default()
	if cfg.Registry.Path != "" {
		if reg, err = registry.LoadRegistry(cfg.Registry.Path); err != nil {
			log.Error("Failed to load category registry", map[string]interface{}{"error": err.Error()})
			return 1
		}
	}
	criteria, err := reg.Criteria(cfg.Searches)
	if err != nil {
		log.Error("Invalid searches", map[string]interface{}{"error": err.Error()})
		return 1
	}

	sink := progress.MultiSink{progress.NewConsoleSink(os.Stdout), progress.NewLogSink(log)}
	httpClient := apphttp.NewClient(config.GetDuration(cfg.API.Timeout))

	// --- Session ---
	stores := []auth.SessionStore{loader.SessionStore(cfg)}
	if cfg.Database.Redis.Enabled() {
		redis := database.NewRedis(cfg.Database.Redis)
		defer redis.Close()
		stores = append(stores, database.NewSessionCache(redis.Client, cfg.Database.Redis.KeyPrefix))
	}
	login := auth.NewClient(cfg.API.BaseURL, cfg.API.IDURL, cfg.API.ClientID, httpClient)
	session, err := auth.NewResolver(login, log, stores...).Resolve(ctx, cfg.Account.Email, cfg.Account.Password)
	if err != nil {
		log.Error("Authentication failed", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(apperrors.CodeOf(err)),
		})
		return 1
	}
	client := httpClient.WithToken(session.Token)

	// --- Profile ---
	sink.Start(lp.Stage, 0, 0)
	profileOut, err := lp.NewHandler(lp.LoadConfig(cfg.API.BaseURL, cfg.API.IDURL), client, log).Execute(ctx, &lp.Input{})
	if err != nil {
		sink.Finish(lp.Stage, false, "Failed to retrieve user details")
		return 1
	}
	sink.Finish(lp.Stage, true, fmt.Sprintf("Logged in as %s", profileOut.Profile.Name))

	// --- Application ledger ---
	var recorder models.ApplicationRecorder
	if cfg.Database.Postgres.Enabled() {
		ledger, closeLedger, err := openLedger(ctx, cfg.Database.Postgres)
		if err != nil {
			log.Warn("Application ledger disabled", map[string]interface{}{"error": err.Error()})
		} else {
			defer closeLedger()
			recorder = ledger
		}
	}

	// --- Pipeline ---
	obs := observability.New("wanted-applier", log)
	defer obs.Shutdown()

	workers := cfg.Concurrency.Workers
	orchestrator := pipeline.New(
		rl.NewHandler(rl.LoadConfig(cfg.API.BaseURL, workers), client, sink, log),
		fl.NewHandler(fl.LoadConfig(cfg.API.BaseURL, workers, cfg.FilterWords, cfg.RequiredWords), client, sink, log),
		al.NewHandler(al.LoadConfig(cfg.API.BaseURL, workers), client, recorder, sink, log),
		sink, obs, log,
	)
	result := orchestrator.Run(ctx, criteria, profileOut.Profile)

	report(log, cfg, result)
	return result.ExitCode()
}

func openLedger(ctx context.Context, cfg config.PostgresConfig) (*database.Ledger, func(), error) {
	pg, err := database.NewPostgres(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Ping(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	ledger := database.NewLedger(pg.DB)
	if err := ledger.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return ledger, func() { pg.Close() }, nil
}

// report pushes metrics and sends the run summary. Failures are logged only.
func report(log logger.Logger, cfg *config.Config, result *pipeline.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Metrics.PushgatewayURL != "" {
		if err := metrics.Push(ctx, prometheus.DefaultGatherer, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, result.RunID); err != nil {
			log.Warn("Failed to push metrics", map[string]interface{}{"error": err.Error()})
		}
	}

	if !cfg.Notifications.Enabled() {
		return
	}
	notifier, err := newNotifier(ctx, cfg, log)
	if err != nil {
		log.Warn("Notifications disabled", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := notifier.Notify(ctx, result.Summary()); err != nil {
		log.Warn("Failed to send run summary", map[string]interface{}{"error": err.Error()})
	}
}

func newNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) (*aws.Notifier, error) {
	n := cfg.Notifications
	var (
		sesClient aws.SESService
		snsClient aws.SNSService
	)
	if n.Email.Enabled {
		c, err := aws.NewSESClient(ctx, n.AWS.Region)
		if err != nil {
			return nil, err
		}
		sesClient = c
	}
	if n.SMS.Enabled {
		c, err := aws.NewSNSClient(ctx, n.AWS.Region)
		if err != nil {
			return nil, err
		}
		snsClient = c
	}
	return aws.NewNotifier(aws.NotifierConfig{
		FromEmail: n.Email.From,
		ToEmails:  n.Email.To,
		TopicARN:  n.SMS.TopicARN,
	}, sesClient, snsClient, log), nil
}
