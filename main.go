package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"sheetimport/adapters/directory"
	"sheetimport/adapters/excel"
	"sheetimport/adapters/memory"
	"sheetimport/adapters/notifier"
	"sheetimport/adapters/postgres"
	"sheetimport/adapters/sheets"
	"sheetimport/app"
	"sheetimport/domain/task"
	"sheetimport/internal"
	"sheetimport/internal/api"
	"sheetimport/internal/config"
	"sheetimport/internal/errors"
	"sheetimport/internal/migration"
	"sheetimport/internal/notify"
	"sheetimport/internal/session"
	"sheetimport/ports"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects to PostgreSQL and applies migrations
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	log.Printf("Database ready (schema %s)", migrator.Version())

	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.LogLevel))
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tasks ports.TaskStore = memory.NewTaskStore()
	if appConfig.Database.URL != "" {
		db, err := initDatabase(ctx, appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		tasks = postgres.NewTaskRepository(db)
	} else {
		log.Println("DATABASE_URL not set, created tasks are kept in memory")
	}

	directories := directory.Static(nil)
	if appConfig.Import.DirectoryFile != "" {
		directories, err = directory.LoadFile(appConfig.Import.DirectoryFile)
		if err != nil {
			log.Fatalf("Failed to load collaborator directory: %v", err)
		}
		log.Printf("Using collaborator directory %s", appConfig.Import.DirectoryFile)
	}

	reader := excel.NewReader(excel.DefaultReaderConfig())
	sheetsClient := sheets.NewClient(sheets.ClientConfig{BaseURL: appConfig.Sheets.BaseURL}, &http.Client{})
	factory := func(dir task.Directory) *app.ImportPipeline {
		return app.NewImportPipeline(reader, sheets.NewResolver(sheetsClient, reader), dir, app.DefaultPipelineOptions())
	}

	sessions := session.NewManager(factory, directories, appConfig.Import.SessionTTL)
	sessions.StartJanitor(ctx, appConfig.Import.SessionTTL/4)

	outbox := notifier.NewOutbox(notify.RenderOptions{
		Sender:     appConfig.Notify.Sender,
		AppBaseURL: appConfig.Notify.AppBaseURL,
	})

	handler := api.NewImportHandler(sessions, api.NewSSEHub(), tasks, outbox, api.HandlerConfig{
		MaxUploadBytes: appConfig.Import.MaxUploadBytes,
		FetchTimeout:   appConfig.Sheets.FetchTimeout,
	})

	if err := api.NewServer(handler).Run(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
