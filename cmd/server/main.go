package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/feastly/food-ordering-backend/internal/config"
	"github.com/feastly/food-ordering-backend/internal/database"
	"github.com/feastly/food-ordering-backend/internal/handler"
	"github.com/feastly/food-ordering-backend/internal/mail"
	"github.com/feastly/food-ordering-backend/internal/queue"
	"github.com/feastly/food-ordering-backend/internal/repository"
	"github.com/feastly/food-ordering-backend/internal/router"
	"github.com/feastly/food-ordering-backend/internal/seed"
	"github.com/feastly/food-ordering-backend/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(database.Config{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	rdb := config.NewRedisClient() // may be nil; denylist and limiter degrade

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	tokens := repository.NewTokenRepo(db, cfg.RefreshTTL)
	otps := repository.NewOtpRepo(db)
	denylist := repository.NewDenylistRepo(rdb)

	// Reconcile the role/permission catalog and bootstrap admin before
	// serving: registration depends on the CUSTOMER role existing.
	catalog := seed.Default()
	if cfg.SeedAdminPassword != "" && catalog.Admin != nil {
		catalog.Admin.Password = cfg.SeedAdminPassword
	}
	if err := seed.Run(context.Background(), roles, users, cfg.BcryptCost, catalog); err != nil {
		log.Fatalf("seed reconciliation failed: %v", err)
	}

	sender := mail.NewQueueSender()
	authSvc := service.NewAuthService(users, roles, tokens, denylist,
		cfg.JWTSecret, cfg.AccessTTL, cfg.BcryptCost)
	otpSvc := service.NewOtpService(otps, sender, cfg.OtpCodeLength, cfg.OtpExpiry)

	// Background workers: SMTP delivery off the email queue, and the hourly
	// expiry sweep over refresh tokens and OTP rows.
	go func() {
		if err := queue.StartEmailConsumer(queue.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()
	go service.StartSweeper(context.Background(), cfg.SweepInterval, tokens, otps)

	e := echo.New()
	router.RegisterHealth(e, db, rdb)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), cfg.JWTSecret, denylist)
	router.RegisterOtp(e, handler.NewOtpHandler(otpSvc), rlCfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
