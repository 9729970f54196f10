package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/isabelayared/pharmastock-system/pkg/config"
)

func main() {
	var (
		dsn           string
		migrationsDir string
	)
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL connection string (falls back to PHARMASTOCK_DATABASE_* env)")
	flag.StringVar(&migrationsDir, "dir", "./migrations", "directory with migration files")
	flag.Parse()

	if dsn == "" {
		cfg, err := config.Load("pharmastock")
		if err != nil {
			log.Fatalf("goose: configuration error: %v", err)
		}
		dsn = cfg.Database.DSN()
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Fatalf("goose: failed to connect to DB: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("goose: failed to close DB: %v", err)
		}
	}()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("goose: %v", err)
	}

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}

	command := arguments[0]
	var args []string
	if len(arguments) > 1 {
		args = arguments[1:]
	}

	if err := goose.Run(command, db.DB, migrationsDir, args...); err != nil {
		log.Fatalf("goose %v: %v", command, err)
	}

	fmt.Printf("goose %s success\n", command)
}
