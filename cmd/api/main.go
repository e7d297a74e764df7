package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"farmmarket/internal/auth"
	"farmmarket/internal/config"
	"farmmarket/internal/db"
	"farmmarket/internal/httpserver"
	"farmmarket/internal/idempotency"
	"farmmarket/internal/logging"
	"farmmarket/internal/mail"
	"farmmarket/internal/mpesa"
	cartrepo "farmmarket/internal/repository/cart"
	followrepo "farmmarket/internal/repository/follow"
	messagerepo "farmmarket/internal/repository/message"
	orderrepo "farmmarket/internal/repository/order"
	paymentrepo "farmmarket/internal/repository/payment"
	productrepo "farmmarket/internal/repository/product"
	reportrepo "farmmarket/internal/repository/report"
	reviewrepo "farmmarket/internal/repository/review"
	userrepo "farmmarket/internal/repository/user"
	"farmmarket/internal/service/account"
	adminsvc "farmmarket/internal/service/admin"
	cartsvc "farmmarket/internal/service/cart"
	"farmmarket/internal/service/catalog"
	checkoutsvc "farmmarket/internal/service/checkout"
	messagesvc "farmmarket/internal/service/message"
	ordersvc "farmmarket/internal/service/order"
	paymentsvc "farmmarket/internal/service/payment"
	reportsvc "farmmarket/internal/service/report"
	reviewsvc "farmmarket/internal/service/review"
	socialsvc "farmmarket/internal/service/social"
	walletsvc "farmmarket/internal/service/wallet"
)

func main() {
	cfg := config.FromEnv()

	logger, err := logging.New("api")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	idemStore := idempotency.NewStore(redisClient, cfg.IdempotencyTTL)
	gateway := mpesa.NewClient(cfg.Mpesa)
	mailer := mail.New(cfg.SMTP, logger)

	userRepo := userrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	paymentRepo := paymentrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)
	messageRepo := messagerepo.NewPostgres(dbpool)
	reviewRepo := reviewrepo.NewPostgres(dbpool)
	reportRepo := reportrepo.NewPostgres(dbpool)
	followRepo := followrepo.NewPostgres(dbpool)

	deps := httpserver.Deps{
		Tokens:      tokens,
		Idempotency: idemStore,
		Accounts:    account.New(userRepo, tokens, mailer, logger),
		Catalog:     catalog.New(productRepo, userRepo, reportRepo, reviewRepo),
		Carts:       cartsvc.New(cartRepo, productRepo),
		Checkout:    checkoutsvc.New(cartRepo, productRepo, paymentRepo, gateway, logger),
		Payments:    paymentsvc.New(paymentRepo, cartRepo, userRepo, logger),
		Orders:      ordersvc.New(orderRepo, reportRepo, logger),
		Wallet:      walletsvc.New(userRepo, logger),
		Messages:    messagesvc.New(messageRepo, userRepo),
		Reviews:     reviewsvc.New(reviewRepo, productRepo, orderRepo),
		Reports:     reportsvc.New(reportRepo, userRepo),
		Social:      socialsvc.New(followRepo, userRepo),
		Admin:       adminsvc.New(userRepo, logger),
	}

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
