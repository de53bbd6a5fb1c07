// @title منصة منارة التعليمية API
// @version 1.0
// @description الخادم الخلفي لمنصة منارة لبيع الدورات التعليمية ومتابعة تقدم المتعلمين.
// @termsOfService http://swagger.io/terms/

// @contact.name الدعم الفني
// @contact.email support@manara.example

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"manara_edu_backend/internal/app"
	"manara_edu_backend/internal/config"
	"manara_edu_backend/pkg/configwatcher"
	"manara_edu_backend/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migration and exit")
	migrate := flag.Bool("migrate", false, "force database migration on startup")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration complete, exiting")
		return
	}

	// picks up progression toggle edits without a restart
	go configwatcher.WatchConfig("configs/config.yaml", application.ApplyConfig)

	application.Run()
}
