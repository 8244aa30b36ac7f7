//go:build ignore

// Applies scripts/init_db.sql against the configured database:
//
//	go run scripts/setup_db.go [dsn]
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/lib/pq"
)

func main() {
	dsn := os.Getenv("POSTGRES_DSN")
	if len(os.Args) > 1 {
		dsn = os.Args[1]
	}
	if dsn == "" {
		log.Fatal("set POSTGRES_DSN or pass a DSN as the first argument")
	}

	fmt.Printf("connecting to %s\n", maskPassword(dsn))

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to open connection: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	sqlContent, err := os.ReadFile("scripts/init_db.sql")
	if err != nil {
		log.Fatalf("failed to read init_db.sql: %v", err)
	}

	if _, err := db.Exec(string(sqlContent)); err != nil {
		log.Fatalf("failed to execute schema script: %v", err)
	}

	tables := []string{
		"users", "organizations", "organization_members", "organization_invitations",
		"projects", "boards", "board_columns", "cards", "card_assignments", "checklist_items",
	}
	for _, table := range tables {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			log.Fatalf("table %s missing after setup: %v", table, err)
		}
	}
	fmt.Println("database initialization completed")
}

// maskPassword hides the credential portion of a DSN for logging.
func maskPassword(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at == -1 || scheme == -1 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
