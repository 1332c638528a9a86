package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the postgres pool. The retry loop covers the docker case
// where the database container needs a couple of seconds to accept
// connections. TranslateError turns driver unique-violation errors into
// gorm.ErrDuplicatedKey, which the storage layer relies on.
func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=db user=postgres password=postgres dbname=jago_kursus port=5432 sslmode=disable"
	}

	var db *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			log.Println("connected to database")
			return db, nil
		}
		log.Printf("database connection attempt %d failed, retrying... (%v)", i+1, err)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("database unreachable after retries: %w", err)
}
