package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/juju/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options selects the driver and connection target.
type Options struct {
	Driver   string // postgres, mysql, sqlserver or sqlite
	DSN      string // takes precedence over the discrete fields
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	LogSQL   bool
}

// Open connects to the configured database and sets up pooling.
func Open(opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if opts.LogSQL {
		level = logger.Info
	}
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:      newLogger,
		PrepareStmt: false, // hosted poolers in transaction mode reject server-side prepared statements
	})
	if err != nil {
		return nil, errors.Annotatef(err, "connecting to %s database", opts.Driver)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if opts.Driver == "sqlite" {
		// a single connection keeps in-memory databases consistent
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Printf("Database connection established (%s)", opts.Driver)
	return db, nil
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case "", "postgres":
		dsn := opts.DSN
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				opts.Host, opts.User, opts.Password, opts.Name, opts.Port,
			)
		}
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), nil
	case "mysql":
		dsn := opts.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				opts.User, opts.Password, opts.Host, opts.Port, opts.Name)
		}
		return mysql.Open(dsn), nil
	case "sqlserver", "mssql":
		dsn := opts.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
				opts.User, opts.Password, opts.Host, opts.Port, opts.Name)
		}
		return sqlserver.Open(dsn), nil
	case "sqlite":
		dsn := opts.DSN
		if dsn == "" {
			dsn = opts.Name + ".db"
		}
		return sqlite.Open(dsn), nil
	}
	return nil, errors.NotSupportedf("database driver %q", opts.Driver)
}
