package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"folioauth/internal/auth"
	"folioauth/internal/common"
	"folioauth/internal/config"
	"folioauth/internal/handlers/api"
	"folioauth/internal/mail"
	"folioauth/internal/middlewares"
	"folioauth/internal/render"
	"folioauth/internal/store"
	"folioauth/internal/twofactor"
	"folioauth/internal/users"
	"folioauth/model"
	"folioauth/params"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/redis/v3"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
	emailFlag = &cli.StringFlag{
		Name:     "email",
		Usage:    "Admin account email",
		Required: true,
	}
	fullNameFlag = &cli.StringFlag{
		Name:  "name",
		Usage: "Admin account full name",
	}
	passwordFlag = &cli.StringFlag{
		Name:     "password",
		Usage:    "Admin account password",
		Required: true,
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "folioauth - portfolio admin authentication server with TOTP two-factor auth"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
		{
			Name:   "create-user",
			Usage:  "Create an admin account",
			Flags:  []cli.Flag{configFileFlag, emailFlag, fullNameFlag, passwordFlag},
			Action: createUser,
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dbConfig.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if sqlDB, err := db.DB(); err == nil {
		if dbConfig.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
		}
		if dbConfig.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
		}
		if dbConfig.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Second)
		}
	}

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}
	return db
}

func mustInitMailSender(mailCfg config.MailConfig) mail.MailSender {
	switch mailCfg.Backend {
	case "":
		slog.Warn("No mail backend configured, notification emails are disabled")
		return mail.NewNullMailSender()
	case "smtp":
		sender, err := mail.NewSMTPMailSender(mail.SMTPConfig{
			Host:     mailCfg.SMTP.Host,
			Port:     mailCfg.SMTP.Port,
			Username: mailCfg.SMTP.Username,
			Password: mailCfg.SMTP.Password,
			TLS:      mailCfg.SMTP.TLS,
			CertFile: mailCfg.SMTP.CertFile,
			KeyFile:  mailCfg.SMTP.KeyFile,
			CAFile:   mailCfg.SMTP.CAFile,
		}, mailCfg.From)
		if err != nil {
			log.Fatalf("Failed to initialize SMTP mail sender: %v", err)
		}
		return sender
	default:
		log.Fatalf("Unsupported mail sender backend %s", mailCfg.Backend)
		return nil
	}
}

func setupAPIRoutes(
	router fiber.Router,
	limiterStorage fiber.Storage,
	userService *users.UserService,
	twoFactorService *twofactor.TwoFactorService,
	tokenService *auth.TokenService,
	mailSender mail.MailSender) {

	var (
		loginHandler     = api.NewLoginHandler(userService, twoFactorService, tokenService)
		twoFactorHandler = api.NewTwoFactorHandler(twoFactorService, mailSender)
		requireAuth      = middlewares.RequireAuth(tokenService)
	)

	group := router.Group("/api")
	group.Use(limiter.New(limiter.Config{
		Max:        params.AuthRateLimitMax,
		Expiration: params.AuthRateLimitWindow,
		Storage:    limiterStorage,
	}))

	group.Post("/login", loginHandler.PostLogin)
	group.Post("/2fa/validate", twoFactorHandler.PostValidate)
	group.Post("/2fa/setup", requireAuth, twoFactorHandler.PostSetup)
	group.Post("/2fa/verify", requireAuth, twoFactorHandler.PostVerify)
	group.Get("/2fa/status", requireAuth, twoFactorHandler.GetStatus)
	group.Post("/2fa/disable", requireAuth, twoFactorHandler.PostDisable)
}

func run(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	globalVars := map[string]interface{}{
		"siteName": cfg.SiteName,
		"baseURL":  cfg.BaseURL,
	}
	if err := render.Initialize(globalVars, cfg.TemplateDir); err != nil {
		return err
	}

	mailSender := mustInitMailSender(cfg.Mail)
	db := mustInitDatabase(cfg.MySQL)

	var (
		counterStorage store.Storage
		limiterStorage fiber.Storage
		redisStorage   *redis.Storage
	)
	if cfg.Redis.URL != "" {
		redisStorage = redis.New(redis.Config{
			URL:           cfg.Redis.URL,
			PoolSize:      cfg.Redis.PoolSize,
			IsClusterMode: cfg.Redis.ClusterMode,
		})
		counterStorage = store.NewRedisStorage(redisStorage.Conn())
		limiterStorage = redisStorage
	} else {
		slog.Warn("Redis not configured, challenge state is kept in memory")
		counterStorage = store.NewMemoryStorage()
		limiterStorage = memory.New()
	}

	// repositories and services
	var (
		userRepo    = users.NewUserRepository(db)
		userService = users.NewUserService(userRepo)

		twoFactorService = twofactor.NewTwoFactorService(twofactor.Options{
			Issuer:           cfg.TwoFactor.Issuer,
			WindowSteps:      cfg.TwoFactor.WindowSteps,
			StepSeconds:      cfg.TwoFactor.StepSeconds,
			CodeDigits:       cfg.TwoFactor.CodeDigits,
			BackupCodeCount:  cfg.TwoFactor.BackupCodeCount,
			BackupCodeLength: cfg.TwoFactor.BackupCodeLength,
		}, cfg.MasterKey, counterStorage, userService)

		tokenService = auth.NewTokenService(cfg.BaseURL, cfg.Token.Secret, cfg.Token.MaxAge)
	)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	router.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	setupAPIRoutes(router, limiterStorage, userService, twoFactorService, tokenService, mailSender)

	var rdbConn goredis.UniversalClient
	if redisStorage != nil {
		rdbConn = redisStorage.Conn()
	}
	healthCheckCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	go common.StartHealthCheckServer(healthCheckCtx, done, rdbConn, db)
	defer func() {
		term()
		<-done
	}()
	return router.Listen(cfg.ListenAddr)
}

func createUser(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		return err
	}
	mustInitLogger(cfg.Debug)

	db := mustInitDatabase(cfg.MySQL)
	userService := users.NewUserService(users.NewUserRepository(db))

	user, err := userService.CreateUser(ctx.Context, users.CreateUserOptions{
		FullName: ctx.String(fullNameFlag.Name),
		Email:    ctx.String(emailFlag.Name),
		Password: ctx.String(passwordFlag.Name),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created admin account %d (%s)\n", user.ID, user.Email)
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
