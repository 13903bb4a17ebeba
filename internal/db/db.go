package db

import (
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the sqlite database behind the session store and runs
// migrations. The default DSN is in-memory: conversations live only as long
// as the process.
func Connect(dsn string, models ...any) *gorm.DB {
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := gdb.AutoMigrate(models...); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	return gdb
}
