package router

import (
	"time"

	"github.com/doctorvirtual/api/config"
	"github.com/doctorvirtual/api/database"
	"github.com/doctorvirtual/api/handlers"
	auth_handlers "github.com/doctorvirtual/api/handlers/auth"
	chat_handlers "github.com/doctorvirtual/api/handlers/chat"
	intake_handlers "github.com/doctorvirtual/api/handlers/intake"
	upload_handlers "github.com/doctorvirtual/api/handlers/upload"
	"github.com/doctorvirtual/api/services"
	"github.com/doctorvirtual/api/services/assistant"
	"github.com/doctorvirtual/api/services/storage"
	"github.com/doctorvirtual/api/utils/auth"
	"github.com/doctorvirtual/api/utils/cache"
	"github.com/doctorvirtual/api/utils/middleware"
	"github.com/doctorvirtual/api/utils/session"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies carries everything the route tree needs. The assistant
// client is shared between chat, uploads and the retention sweep.
type Dependencies struct {
	Env    *config.EnvConfig
	Store  database.Storage
	Client *assistant.Client
	Log    *zap.Logger
}

// SetupRoutes wires middleware, services and handlers onto the app.
func SetupRoutes(app *fiber.App, deps Dependencies) error {
	env := deps.Env
	log := deps.Log

	db, ok := deps.Store.GetDB().(*gorm.DB)
	if !ok {
		return fiber.NewError(fiber.StatusInternalServerError, "storage is not a GORM store")
	}

	sessions := session.NewManager(env.SESSION_SECRET, env.GO_ENV == "production")

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        env.JWT_ISSUER,
	})

	// Redis is optional; without it logins simply lose lockout protection.
	var bruteForceProtection *middleware.BruteForceProtection
	if env.REDIS_URL != "" {
		redisCache, err := cache.NewRedisCache(env.REDIS_URL)
		if err != nil {
			log.Warn("redis unavailable, login lockout disabled", zap.Error(err))
		} else {
			bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
		}
	}

	var archive *storage.SpacesClient
	if env.SpacesConfigured() {
		var err error
		archive, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: env.SPACES_ACCESS_KEY,
			SecretKey: env.SPACES_SECRET_KEY,
			Bucket:    env.SPACES_BUCKET,
			Region:    env.SPACES_REGION,
			Endpoint:  env.SPACES_ENDPOINT,
		})
		if err != nil {
			log.Warn("upload archive unavailable", zap.Error(err))
		}
	}

	quota := services.NewQuotaTracker()
	threads := services.NewThreadService(deps.Client, log)
	runner := services.NewRunPoller(deps.Client, services.DefaultPollPolicy(), log)
	chatService := services.NewChatService(db, quota, threads, runner, deps.Client, env.ASSISTANT_ID, log)
	attachmentService := services.NewAttachmentService(deps.Client, log)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessions, db)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, sessions, bruteForceProtection)
	intakeHandler := intake_handlers.NewIntakeHandler(db, sessions, log)
	chatHandler := chat_handlers.NewChatHandler(chatService, sessions, log)
	uploadHandler := upload_handlers.NewUploadHandler(attachmentService, sessions, archive, log)

	allowedOrigins := env.ALLOWED_ORIGINS
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:8080"
	}
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	app.Get("/health", handlers.HandleCheckHealth(deps.Store))

	// Browser flow
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendFile("./web/static/index.html")
	})
	app.Get("/intake", intakeHandler.Page)
	app.Post("/intake", intakeHandler.Submit)
	app.Get("/chat", chatHandler.Page)
	app.Post("/chat", chatHandler.Ask)
	app.Post("/upload", uploadHandler.Register)

	app.Post("/signup", authHandler.Register)
	if bruteForceProtection != nil {
		app.Post("/login", bruteForceProtection.CheckLockout(), authHandler.Login)
	} else {
		app.Post("/login", authHandler.Login)
	}
	app.Get("/logout", authHandler.Logout)

	// JSON API
	api := app.Group("/api/v1")
	api.Get("/me", authMiddleware.Optional(), authHandler.Me)
	api.Get("/intake", authMiddleware.Required(), intakeHandler.Latest)

	return nil
}
