package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/fulfillment"
	"storefront/internal/infra/notify"
	"storefront/internal/infra/payment"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

// NewLoggerはprodならJSON、それ以外はtextで出す
func NewLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		opts.Level = slog.LevelDebug
	}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// Appは組み立て済みの部品
type App struct {
	Config config.Config
	Log    *slog.Logger
	DB     *gorm.DB

	Reconcile    *usecase.ReconcileUsecase
	Checkout     *usecase.CheckoutUsecase
	Shipping     *usecase.ShippingUsecase
	Notification *usecase.NotificationUsecase
	Product      *usecase.ProductUsecase
	AdminOrder   *usecase.AdminOrderUsecase
}

// Buildは DB接続→Repository→外部サービス→Usecase の順に組み立てる
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	//Repository（GORM実装）生成
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービス（認証情報がなくても起動はする）
	printful := fulfillment.NewPrintfulClient(
		cfg.PrintfulBaseURL,
		cfg.PrintfulAPIKey,
		cfg.PrintfulRPS,
		fulfillment.WithStoreID(cfg.PrintfulStoreID),
	)
	stripeGW := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	mailer := notify.NewSendGridDispatcher(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName)

	warnMissing(ctx, logger, cfg)

	//Usecase生成
	reconcile := usecase.NewReconcileUsecase(usecase.ReconcileDeps{
		Orders:        orderRepo,
		Tx:            txm,
		AuditLogs:     auditRepo,
		Fulfillment:   printful,
		Notifier:      mailer,
		WebhookSecret: cfg.PrintfulWebhookSecret,
		Clock:         usecase.SystemClock{},
		IDs:           &uuidGenerator{},
		Logger:        logger.With("component", "reconcile"),
	})
	shipping := usecase.NewShippingUsecase(printful, "USD", logger.With("component", "shipping"))
	checkout := usecase.NewCheckoutUsecase(usecase.CheckoutDeps{
		Payments:         stripeGW,
		Shipping:         shipping,
		Reconcile:        reconcile,
		SiteURL:          cfg.SiteURL,
		Currency:         "USD",
		AllowedCountries: cfg.ShippingAllowedCountries,
		Logger:           logger.With("component", "checkout"),
	})

	return &App{
		Config:       cfg,
		Log:          logger,
		DB:           gormDB,
		Reconcile:    reconcile,
		Checkout:     checkout,
		Shipping:     shipping,
		Notification: usecase.NewNotificationUsecase(mailer, logger.With("component", "notify")),
		Product:      usecase.NewProductUsecase(printful, logger.With("component", "product")),
		AdminOrder:   usecase.NewAdminOrderUsecase(txm, auditRepo),
	}, nil
}

// Handlersはhttpサーバー用のハンドラをまとめる
func (a *App) Handlers() server.Handlers {
	return server.Handlers{
		Webhook:      handler.NewWebhookHandler(a.Reconcile, a.Checkout),
		Reconcile:    handler.NewReconcileHandler(a.Reconcile, a.Config.CronSecret),
		Checkout:     handler.NewCheckoutHandler(a.Checkout, a.Shipping),
		Notification: handler.NewNotificationHandler(a.Notification),
		Product:      handler.NewProductHandler(a.Product),
		AdminOrder:   handler.NewAdminOrderHandler(a.AdminOrder),
		JWTSecret:    a.Config.JWTSecret,
	}
}

func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func warnMissing(ctx context.Context, logger *slog.Logger, cfg config.Config) {
	missing := []string{}
	for name, v := range map[string]string{
		"STRIPE_SECRET_KEY":       cfg.StripeSecretKey,
		"STRIPE_WEBHOOK_SECRET":   cfg.StripeWebhookSecret,
		"PRINTFUL_API_KEY":        cfg.PrintfulAPIKey,
		"PRINTFUL_WEBHOOK_SECRET": cfg.PrintfulWebhookSecret,
		"SENDGRID_API_KEY":        cfg.SendGridAPIKey,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		logger.WarnContext(ctx, "provider credentials not set, dependent operations will fail", "missing", missing)
	}
}
