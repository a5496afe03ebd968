package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the database from environment configuration. MySQL is used
// when DB_HOST is set, SQLite otherwise (DB_PATH, default audit.db).
// TranslateError is on so a racing double-create surfaces as
// gorm.ErrDuplicatedKey instead of a driver-specific error.
func InitDB() (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}

	host := os.Getenv("DB_HOST")
	if host == "" {
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "audit.db"
		}
		return gorm.Open(sqlite.Open(path), cfg)
	}

	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "3306"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		os.Getenv("DB_USER"), os.Getenv("DB_PASS"), host, port, os.Getenv("DB_NAME"))
	return gorm.Open(mysql.Open(dsn), cfg)
}
