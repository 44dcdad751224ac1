package app

import (
	"fmt"

	"github.com/doctorvirtual/api/api"
	"github.com/doctorvirtual/api/config"
	"github.com/doctorvirtual/api/database"
	"github.com/doctorvirtual/api/router"
	"github.com/doctorvirtual/api/services/assistant"
	"github.com/doctorvirtual/api/services/cron"
	"github.com/doctorvirtual/api/utils/logger"
	"go.uber.org/zap"
)

// SetupAndRunServer boots the whole service: config, logging, identity
// store, assistant client, retention sweep, routes.
func SetupAndRunServer() error {
	if err := config.LoadENV(); err != nil {
		return err
	}

	env, err := config.Get()
	if err != nil {
		return err
	}

	log := logger.New(env.LOG_FILE, env.GO_ENV == "production")
	defer log.Sync()

	store, err := database.StartGORM(env)
	if err != nil {
		log.Error("postgres connection failed, is the database running?", zap.Error(err))
		return err
	}

	if err := store.Init(); err != nil {
		log.Error("database migration failed", zap.Error(err))
		return err
	}

	client := assistant.NewClient(assistant.Config{
		APIKey:  env.OPENAI_API_KEY,
		BaseURL: env.OPENAI_BASE_URL,
	})

	cronManager := cron.NewManager(client, env.FILE_RETENTION, log)
	if err := cronManager.Start(); err != nil {
		log.Warn("cron jobs not started", zap.Error(err))
	}

	defer func() {
		cronManager.Stop()
		store.Close()
	}()

	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT), log)
	app := server.GetEngine()

	if err := router.SetupRoutes(app, router.Dependencies{
		Env:    env,
		Store:  store,
		Client: client,
		Log:    log,
	}); err != nil {
		return err
	}

	return server.Run()
}
