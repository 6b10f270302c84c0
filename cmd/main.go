package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"el-sabor/internal/config"
	"el-sabor/internal/dashboard"
	"el-sabor/internal/database"
	"el-sabor/internal/lifecycle"
	"el-sabor/internal/logger"
	"el-sabor/internal/messaging"
	"el-sabor/internal/notifier"
	"el-sabor/internal/payment"
	"el-sabor/internal/printer"
	"el-sabor/internal/services"
	"el-sabor/internal/services/client"
	"el-sabor/internal/services/menu"
	"el-sabor/internal/services/order"
	"el-sabor/internal/services/payments"
	"el-sabor/internal/store"
	"el-sabor/internal/store/jsonfile"
	"el-sabor/internal/store/postgres"
)

func main() {
	var (
		mode       = flag.String("mode", "", "Service mode (api, kitchen, driver, notifier)")
		configPath = flag.String("config", "config.yaml", "Path to config file")
		driverID   = flag.String("driver-id", "", "Driver id (required for driver mode)")
		prefetch   = flag.Int("prefetch", 1, "RabbitMQ prefetch count (notifier mode)")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":    *mode,
		"backend": cfg.Storage.Backend,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	switch *mode {
	case "api":
		err = runAPI(ctx, cfg, log)
	case "kitchen":
		err = runKitchen(ctx, cfg, log)
	case "driver":
		if *driverID == "" {
			log.Error("validation_failed", "driver-id is required for driver mode", requestID, nil, nil)
			os.Exit(1)
		}
		err = runDriver(ctx, cfg, log, *driverID)
	case "notifier":
		err = runNotifier(ctx, cfg, log, *prefetch)
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	if err != nil && err != context.Canceled {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// backendStores builds the configured record store. The postgres
// backend runs migrations before serving; the returned cleanup closes
// its pool.
func backendStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.MenuStore, store.OrderStore, func(), error) {
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := database.New(cfg, log)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.RunMigrations(ctx, "migrations"); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		st := postgres.New(db, log)
		return st.Menu(), st.Orders(), db.Close, nil
	default:
		st, err := jsonfile.New(cfg.Storage.DataDir, log)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open data dir: %w", err)
		}
		return st.Menu(), st.Orders(), func() {}, nil
	}
}

// orderNotifier connects to RabbitMQ for event publishing. The broker
// is optional for the HTTP modes: when it is unreachable the service
// runs without events rather than refusing to start.
func orderNotifier(cfg *config.Config, log *logger.Logger) (order.Notifier, func()) {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		log.Error("rabbitmq_unavailable", "Running without order events", "", err, nil)
		return nil, func() {}
	}
	publisher := messaging.NewPublisher(conn, log)
	return publisher, func() { conn.Close() }
}

func pixGateway(cfg *config.Config, log *logger.Logger) payment.PixGateway {
	if cfg.Payment.AccessToken == "" {
		log.Info("payment_mock_enabled", "No gateway access token configured, using in-process gateway", "", nil)
		return payment.NewMemory(30 * time.Minute)
	}
	return payment.NewMercadoPago(&cfg.Payment, log)
}

func runAPI(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	menuStore, orderStore, closeStore, err := backendStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	notify, closeMessaging := orderNotifier(cfg, log)
	defer closeMessaging()

	ticketPrinter := lifecycle.NewAutoPrinter(&printer.WriterPrinter{W: os.Stdout}, cfg.Printing.AutoPrint)

	menuH := menu.NewHandler(menu.NewService(menuStore, log), log)
	orderH := order.NewHandler(order.NewService(orderStore, notify, ticketPrinter, log), log)
	paymentsH := payments.NewHandler(payments.NewService(orderStore, pixGateway(cfg, log), log), log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: services.NewRouter(log, cfg.Access.AdminSecret, menuH, orderH, paymentsH),
	}

	go func() {
		log.Info("service_started", fmt.Sprintf("API started on port %d", cfg.Server.Port), requestID,
			map[string]interface{}{"port": cfg.Server.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server_failed", "HTTP server failed", requestID, err, nil)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}

// The dashboard modes run as separate processes and never open the
// store themselves: every read and transition goes through the API
// service, which owns the store and the ticket printer. Two dashboards
// racing over the same order then get one winner and one conflict.
func runKitchen(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	api := client.New(cfg.APIBaseURL(), log)
	kitchen := dashboard.NewKitchen(api, log, cfg.KitchenPollInterval())
	return kitchen.Run(ctx)
}

func runDriver(ctx context.Context, cfg *config.Config, log *logger.Logger, driverID string) error {
	api := client.New(cfg.APIBaseURL(), log)
	driver, err := dashboard.NewDriver(api, log, cfg.DriverPollInterval(), driverID, cfg.Access.DriverIDs)
	if err != nil {
		return err
	}
	return driver.Run(ctx)
}

func runNotifier(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notifier", prefetch)
	subscriber := notifier.NewSubscriber(consumer, log)
	return subscriber.Start(ctx)
}
