// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bulkbuddy-workers/internal/api"
	"bulkbuddy-workers/internal/common/aws"
	"bulkbuddy-workers/internal/common/camunda"
	"bulkbuddy-workers/internal/common/config"
	"bulkbuddy-workers/internal/common/database"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/common/nutritionapi"
	"bulkbuddy-workers/internal/common/observability"
	"bulkbuddy-workers/internal/common/validation"
	"bulkbuddy-workers/internal/nutrition"
	"bulkbuddy-workers/internal/repository"
	"bulkbuddy-workers/pkg/registry"

	// Calculator Workers (2)
	cct "bulkbuddy-workers/internal/workers/calculator/calculate-calorie-targets"
	pms "bulkbuddy-workers/internal/workers/calculator/partition-meal-slots"

	// Nutrition Workers (2)
	agn "bulkbuddy-workers/internal/workers/nutrition/aggregate-nutrition"
	ffn "bulkbuddy-workers/internal/workers/nutrition/fetch-food-nutrition"

	// Meal Plan Workers (2)
	gmp "bulkbuddy-workers/internal/workers/meal-plan/generate-meal-plan"
	smp "bulkbuddy-workers/internal/workers/meal-plan/save-meal-plan"

	// Notification Workers (1)
	sps "bulkbuddy-workers/internal/workers/notification/send-plan-summary"

	// Data Access Workers (2)
	qe "bulkbuddy-workers/internal/workers/data-access/query-elasticsearch"
	"bulkbuddy-workers/internal/workers/data-access/query-elasticsearch/queries"
	qp "bulkbuddy-workers/internal/workers/data-access/query-postgresql"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type datastores struct {
	pg       *database.PostgresClient
	redis    *database.RedisClient
	es       *database.ElasticsearchClient
	searcher *queries.Searcher
}

func (d *datastores) Close() {
	if d.pg != nil {
		_ = d.pg.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewFromOptions(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.Output,
	}).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	if err := run(cfg, log); err != nil {
		log.Error("worker manager exited", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	log.Info("Starting worker manager...", map[string]interface{}{"environment": cfg.App.Environment})

	obs, err := observability.NewWithOptions(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	})
	if err != nil {
		log.Warn("observability partially initialised", map[string]interface{}{"error": err.Error()})
	}
	defer obs.Shutdown()

	ctx := context.Background()

	stores, err := connectDatastores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		return err
	}
	defer zeebe.Close()
	log.Info("Zeebe client connected successfully", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	schemas := loadSchemas(cfg.Registry.Path, log)
	calc := nutrition.New(cfg.Nutrition)
	store := repository.New(stores.pg.DB, stores.redis.Client, cacheTTL(cfg, qp.TaskType))

	email, sms := notificationSenders(ctx, cfg.Notifications, log)

	// --- Handlers ---
	calories := cct.NewHandler(cct.HandlerOptions{
		Config:     cct.NewConfig(config.GetWorkerConfig(cfg, cct.TaskType)),
		Calculator: calc,
		Profiles:   store.Users,
		Schema:     schemas.For(cct.TaskType),
		Logger:     log,
	})
	mealSlots := pms.NewHandler(
		pms.NewConfig(config.GetWorkerConfig(cfg, pms.TaskType)),
		calc, schemas.For(pms.TaskType), log,
	)
	aggregate := agn.NewHandler(
		agn.NewConfig(config.GetWorkerConfig(cfg, agn.TaskType)),
		calc, store.Recipes, schemas.For(agn.TaskType), log,
	)
	fetchFood := ffn.NewHandler(ffn.HandlerOptions{
		Config:    ffn.NewConfig(config.GetWorkerConfig(cfg, ffn.TaskType)),
		Providers: nutritionapi.NewRegistry(cfg.NutritionAPIs),
		Redis:     stores.redis.Client,
		Schema:    schemas.For(ffn.TaskType),
		Logger:    log,
	})
	generatePlan := gmp.NewHandler(
		gmp.NewConfig(config.GetWorkerConfig(cfg, gmp.TaskType), cfg.Database.Elasticsearch.RecipeIndex),
		calc, stores.searcher, schemas.For(gmp.TaskType), log,
	)
	savePlan := smp.NewHandler(
		smp.NewConfig(config.GetWorkerConfig(cfg, smp.TaskType)),
		store.MealPlans, schemas.For(smp.TaskType), log,
	)
	summary := sps.NewHandler(sps.HandlerOptions{
		Config:   sps.NewConfig(config.GetWorkerConfig(cfg, sps.TaskType), cfg.Notifications),
		Contacts: store.Users,
		Email:    email,
		SMS:      sms,
		Schema:   schemas.For(sps.TaskType),
		Logger:   log,
	})
	queryPG := qp.NewHandler(
		qp.NewConfig(config.GetWorkerConfig(cfg, qp.TaskType)),
		store, schemas.For(qp.TaskType), log,
	)
	queryES := qe.NewHandler(
		qe.NewConfig(config.GetWorkerConfig(cfg, qe.TaskType)),
		stores.searcher, schemas.For(qe.TaskType), log,
	)

	handlers := map[string]camunda.JobHandler{
		cct.TaskType: calories,
		pms.TaskType: mealSlots,
		agn.TaskType: aggregate,
		ffn.TaskType: fetchFood,
		gmp.TaskType: generatePlan,
		smp.TaskType: savePlan,
		sps.TaskType: summary,
		qp.TaskType:  queryPG,
		qe.TaskType:  queryES,
	}

	var workers []*camunda.CamundaWorker
	for taskType, handler := range handlers {
		if !config.IsWorkerEnabled(cfg, taskType) {
			log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			continue
		}
		wcfg := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.StartWorker(zeebe.GetClient(), taskType, wcfg, handler, obs, log))
	}
	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	// --- HTTP API, health & metrics ---
	server := api.NewServer(api.Options{
		Config:    cfg.Server,
		Calories:  calories,
		MealSlots: mealSlots,
		Aggregate: aggregate,
		Checks: map[string]api.CheckFunc{
			"zeebe":         zeebe.HealthCheck,
			"postgres":      stores.pg.Ping,
			"redis":         stores.redis.Ping,
			"elasticsearch": func(context.Context) error { return stores.es.Ping() },
		},
		Obs:    obs,
		Logger: log,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutdown signal received, stopping workers...", map[string]interface{}{"signal": sig.String()})
	case err := <-serverErr:
		if err != nil {
			log.Error("HTTP server failed", map[string]interface{}{"error": err.Error()})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP server", map[string]interface{}{"error": err.Error()})
	}
	for _, w := range workers {
		w.Stop()
	}

	log.Info("Worker manager stopped gracefully", nil)
	return nil
}

func connectDatastores(ctx context.Context, cfg *config.Config, log logger.Logger) (*datastores, error) {
	stores := &datastores{}

	// --- Init PostgreSQL with retry ---
	err := retryWithBackoff(func() error {
		var err error
		stores.pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return stores.pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, stores.pg.DB); err != nil {
		stores.Close()
		return nil, err
	}
	log.Info("PostgreSQL connected successfully", nil)

	// --- Init Redis with retry ---
	err = retryWithBackoff(func() error {
		var err error
		stores.redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return stores.redis.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		stores.Close()
		return nil, err
	}
	log.Info("Redis connected successfully", nil)

	// --- Init Elasticsearch with retry ---
	err = retryWithBackoff(func() error {
		var err error
		stores.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return stores.es.Ping()
	}, 15, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		stores.Close()
		return nil, err
	}
	index := cfg.Database.Elasticsearch.RecipeIndex
	if err := database.EnsureRecipeIndex(ctx, stores.es.Client, index); err != nil {
		stores.Close()
		return nil, err
	}
	stores.searcher = queries.NewSearcher(stores.es.Client, index)
	log.Info("Elasticsearch connected successfully", map[string]interface{}{"recipeIndex": index})

	return stores, nil
}

type schemaSet map[string]*validation.SchemaValidator

// For returns nil for unknown task types; a nil validator accepts everything.
func (s schemaSet) For(taskType string) *validation.SchemaValidator {
	return s[taskType]
}

// loadSchemas compiles the input schema of every registered activity. A
// missing or broken registry disables schema validation rather than startup.
func loadSchemas(path string, log logger.Logger) schemaSet {
	set := schemaSet{}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded, input schemas disabled", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return set
	}

	for _, activity := range reg.Activities {
		raw, err := reg.InputSchema(activity.TaskType)
		if err != nil {
			log.Warn("invalid input schema", map[string]interface{}{"taskType": activity.TaskType, "error": err.Error()})
			continue
		}
		validator, err := validation.NewSchemaValidator(raw)
		if err != nil {
			log.Warn("input schema does not compile", map[string]interface{}{"taskType": activity.TaskType, "error": err.Error()})
			continue
		}
		set[activity.TaskType] = validator
	}
	log.Info("activity registry loaded", map[string]interface{}{"activities": len(reg.Activities), "schemas": len(set)})
	return set
}

// notificationSenders returns untyped nil interfaces for disabled channels so
// the handler's nil checks hold.
func notificationSenders(ctx context.Context, ncfg config.NotificationConfig, log logger.Logger) (sps.EmailSender, sps.SMSSender) {
	var email sps.EmailSender
	var sms sps.SMSSender

	if ncfg.SES.Enabled {
		client, err := aws.NewSESClient(ctx, ncfg.AWS.Region)
		if err != nil {
			log.Warn("SES disabled", map[string]interface{}{"error": err.Error()})
		} else {
			email = client
		}
	}
	if ncfg.SNS.Enabled {
		client, err := aws.NewSNSClient(ctx, ncfg.AWS.Region, ncfg.SNS.SenderID)
		if err != nil {
			log.Warn("SNS disabled", map[string]interface{}{"error": err.Error()})
		} else {
			sms = client
		}
	}
	return email, sms
}

func cacheTTL(cfg *config.Config, taskType string) time.Duration {
	return time.Duration(config.GetWorkerConfig(cfg, taskType).CacheTTL) * time.Second
}
