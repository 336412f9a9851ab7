package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pdv-api/internal/application/auth"
	"github.com/jhoicas/pdv-api/internal/application/cart"
	"github.com/jhoicas/pdv-api/internal/application/checkout"
	"github.com/jhoicas/pdv-api/internal/application/financial"
	"github.com/jhoicas/pdv-api/internal/application/inventory"
	"github.com/jhoicas/pdv-api/internal/application/receipt"
	"github.com/jhoicas/pdv-api/internal/application/usecase"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
	"github.com/jhoicas/pdv-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/pdv-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pdv-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/pdv-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/pdv-api/internal/interfaces/http"
	"github.com/jhoicas/pdv-api/internal/interfaces/jobs"
	"github.com/jhoicas/pdv-api/pkg/config"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

// stores repositorios y runner del driver elegido.
type stores struct {
	products  repository.ProductRepository
	sales     repository.SaleRepository
	movements repository.InventoryMovementRepository
	financial repository.FinancialTransactionRepository
	customers repository.CustomerRepository
	users     repository.UserRepository
	tx        checkout.TxRunner
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := openStores(ctx, cfg, log)
	defer st.close()

	authUC := auth.NewAuthUseCase(st.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.Store.UsesMemory() {
		seedDemo(ctx, st, authUC, log)
	}

	// Carritos y caché de comprobantes: Redis si está configurado, memoria si no.
	var (
		cartStore    cart.Store      = memory.NewCartStore(cfg.Cart.TTL)
		cartLocker   cart.Locker     = memory.NewLocker()
		receiptCache receipt.Cache
	)
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		cartStore = infraredis.NewCartStore(rdb, cfg.Cart.TTL)
		cartLocker = infraredis.NewLocker(rdb)
		receiptCache = infraredis.NewReceiptCache(rdb, 7*24*time.Hour)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis habilitado para carritos y comprobantes")
	}

	receipts := receipt.NewService(infrapdf.NewReceiptRenderer(cfg.App.Name), receiptCache, st.sales, log)
	commitUC := checkout.NewCommitSaleUseCase(st.tx, inventory.NewStockUseCase(), checkout.RetryPolicy{
		MaxAttempts: cfg.Checkout.MaxAttempts,
		BaseBackoff: cfg.Checkout.BaseBackoff,
		MaxBackoff:  cfg.Checkout.MaxBackoff,
		Timeout:     cfg.Checkout.Timeout,
	}, log,
		checkout.WithCustomers(st.customers),
		checkout.WithReceipts(receipts),
	)
	saleQuery := checkout.NewSaleQueryUseCase(st.sales, st.movements, st.financial)
	ledger := financial.NewLedgerUseCase(st.financial, log)
	productUC := usecase.NewProductUseCase(st.products)
	carts := cart.NewService(cartStore, cartLocker, st.products, log)

	monitor := inventory.NewLowStockMonitor(st.products, log)
	lowStockJob := jobs.NewLowStockJob(func(ctx context.Context) error {
		_, err := monitor.Check(ctx)
		return err
	}, cfg.Scheduler.LowStockEvery, log)
	if err := lowStockJob.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("iniciar jobs")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PDV API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		ProductUC:  productUC,
		CommitSale: commitUC,
		SaleQuery:  saleQuery,
		Financial:  ledger,
		Carts:      carts,
		Receipts:   receipts,
		JWTSecret:  cfg.JWT.Secret,
		Logger:     log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	lowStockJob.Stop()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) stores {
	if cfg.Store.UsesMemory() {
		s := memory.New()
		log.Warn().Msg("STORE_DRIVER=memory: los datos no sobreviven al reinicio")
		return stores{
			products:  memory.NewProductRepository(s),
			sales:     memory.NewSaleRepository(s),
			movements: memory.NewMovementRepository(s),
			financial: memory.NewFinancialRepository(s),
			customers: memory.NewCustomerRepository(s),
			users:     memory.NewUserRepository(s),
			tx:        memory.NewTxRunner(s),
			close:     func() {},
		}
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	return stores{
		products:  postgres.NewProductRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		movements: postgres.NewInventoryMovementRepository(pool),
		financial: postgres.NewFinancialRepository(pool),
		customers: postgres.NewCustomerRepository(pool),
		users:     postgres.NewUserRepository(pool),
		tx:        postgres.NewTxRunner(pool),
		close:     pool.Close,
	}
}

// seedDemo catálogo mínimo y un admin para el modo en memoria.
func seedDemo(ctx context.Context, st stores, authUC *auth.AuthUseCase, log *logger.Logger) {
	now := time.Now().UTC()
	demo := []entity.Product{
		{ID: "demo-caderno", SKU: "CAD-001", Name: "Caderno 96 folhas", Category: "Papelaria", Price: decimal.RequireFromString("19.99"), Stock: 50, MinStock: 10},
		{ID: "demo-mochila", SKU: "MOC-001", Name: "Mochila escolar", Category: "Acessórios", Price: decimal.RequireFromString("49.99"), Stock: 12, MinStock: 3},
		{ID: "demo-estojo", SKU: "EST-001", Name: "Estojo duplo", Category: "Acessórios", Price: decimal.RequireFromString("59.99"), Stock: 4, MinStock: 5},
	}
	for i := range demo {
		p := demo[i]
		p.Unit, p.IsActive, p.CreatedAt, p.UpdatedAt = "un", true, now, now
		if err := st.products.Upsert(ctx, &p); err != nil {
			log.Fatal().Err(err).Str("sku", p.SKU).Msg("seed demo")
		}
	}
	password := os.Getenv("DEMO_ADMIN_PASSWORD")
	if password == "" {
		password = "admin12345"
	}
	if _, _, err := authUC.EnsureUser(ctx, "admin@pdv.local", password, "Administrador", entity.RoleAdmin); err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}
	log.Info().Int("products", len(demo)).Str("admin", "admin@pdv.local").Msg("datos demo cargados")
}
