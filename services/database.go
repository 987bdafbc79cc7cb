package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/services/repositories"
	"github.com/lac-hong-legacy/footage_api/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"

	defaultAuditRetention = 90 * 24 * time.Hour
)

type DatabaseService struct {
	appContext.DefaultService
	db *gorm.DB

	driver   string
	database string

	downloadRepo *repositories.DownloadRepository
	videoRepo    *repositories.VideoRepository
	auditRepo    *repositories.AuditRepository

	stopCleanup chan struct{}
}

const DATABASE_SVC = "database_svc"

func (ds DatabaseService) Id() string {
	return DATABASE_SVC
}

func (ds *DatabaseService) Configure(ctx *appContext.Context) error {
	ds.driver = strings.ToLower(os.Getenv("DB_DRIVER"))
	if ds.driver == "" {
		ds.driver = DriverPostgres
	}

	switch ds.driver {
	case DriverSqlite:
		ds.database = os.Getenv("DB_DATABASE")
		if ds.database == "" {
			ds.database = "footage.db"
		}
	case DriverPostgres:
		ds.database = os.Getenv("DATABASE_URL")
		if ds.database == "" {
			ds.database = postgresDSNFromEnv()
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", ds.driver)
	}

	return ds.DefaultService.Configure(ctx)
}

func postgresDSNFromEnv() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("DB_USER")
	if user == "" {
		user = "postgres"
	}
	password := os.Getenv("DB_PASSWORD")
	if password == "" {
		password = "postgres"
	}
	dbname := os.Getenv("DB_NAME")
	if dbname == "" {
		dbname = "footage_api"
	}
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}
	timezone := os.Getenv("DB_TIMEZONE")
	if timezone == "" {
		timezone = "UTC"
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, dbname, port, sslmode, timezone)
}

func (ds *DatabaseService) dialector() gorm.Dialector {
	if ds.driver == DriverSqlite {
		return sqlite.Open(ds.database)
	}
	return postgres.Open(ds.database)
}

func (ds *DatabaseService) Start() (err error) {
	// Retry connection with exponential backoff
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to %s database (attempt %d/%d)...", ds.driver, attempt, maxRetries)

		ds.db, err = gorm.Open(ds.dialector(), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					log.Println("Successfully connected to database")
					break
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	if err := Migrate(ds.db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	ds.downloadRepo = repositories.NewDownloadRepository(ds.db)
	ds.videoRepo = repositories.NewVideoRepository(ds.db)
	ds.auditRepo = repositories.NewAuditRepository(ds.db)

	ds.stopCleanup = make(chan struct{})
	go ds.cleanupLoop(24 * time.Hour)

	log.Println("Database connected and migrated successfully")
	return nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&model.Subscription{},
		&model.PlanChange{},
		&model.DownloadHistory{},
		&model.Video{},
		&model.AuditLog{},
	}
	return db.AutoMigrate(models...)
}

func (ds *DatabaseService) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := ds.CleanupExpiredData(); err != nil {
				log.Printf("Failed to cleanup expired data: %v", err)
			}
		case <-ds.stopCleanup:
			return
		}
	}
}

func (ds *DatabaseService) CleanupExpiredData() error {
	removed, err := ds.auditRepo.CleanupOldAuditLogs(context.Background(), time.Now().Add(-defaultAuditRetention))
	if err != nil {
		return ds.HandleError(err)
	}
	if removed > 0 {
		log.WithField("removed", removed).Info("Cleaned up old audit logs")
	}
	return nil
}

func (ds *DatabaseService) Shutdown() {
	if ds.stopCleanup != nil {
		close(ds.stopCleanup)
	}
	if ds.db == nil {
		return
	}
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (ds *DatabaseService) Downloads() *repositories.DownloadRepository {
	return ds.downloadRepo
}

func (ds *DatabaseService) Videos() *repositories.VideoRepository {
	return ds.videoRepo
}

func (ds *DatabaseService) Audit() *repositories.AuditRepository {
	return ds.auditRepo
}

// HandleError classifies a gorm error into an AppError with a matching
// HTTP status and logs it.
func (ds *DatabaseService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		// Check for driver-specific errors
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "relation") && strings.Contains(err.Error(), "does not exist") {
			statusCode = http.StatusInternalServerError
			errorType = "SCHEMA_ERROR"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return &shared.AppError{
		StatusCode: statusCode,
		Message:    errorType,
		Err:        err,
	}
}
