package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitJournalDB connects to the external journal MySQL and migrates the given
// models. The journal is a best-effort side channel: when no database is
// configured or the connection fails, it returns nil and the service runs
// with journaling disabled instead of refusing to start.
func InitJournalDB(modelDefs ...interface{}) *gorm.DB {
	if db != nil {
		return db
	}

	cfg := Get()
	var dsn string
	switch {
	case cfg.DatabaseURI != "":
		dsn = cfg.DatabaseURI
	case cfg.DBHost != "":
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
	default:
		log.Print("journal database not configured, check-in journaling disabled")
		return nil
	}

	// Derive the GORM log level from the app level and ignore not-found noise
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:                                   gLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Printf("journal database unreachable, journaling disabled: %v", err)
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		log.Printf("journal database handle unavailable, journaling disabled: %v", err)
		return nil
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		log.Printf("journal database ping failed, journaling disabled: %v", err)
		return nil
	}

	if err := conn.AutoMigrate(modelDefs...); err != nil {
		log.Printf("journal migration failed, journaling disabled: %v", err)
		return nil
	}

	db = conn
	return db
}

// DB returns the journal database handle, or nil when journaling is disabled.
func DB() *gorm.DB {
	return db
}

func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Warn
	}
}
