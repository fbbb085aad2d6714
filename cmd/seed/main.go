package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/pmihaylov/user-management-api/config"
	"github.com/pmihaylov/user-management-api/pkg/helpers"
)

// Standalone admin seeder: same create-if-absent contract the API performs at
// startup, for environments where the API runs without bootstrap rights.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	res, err := db.Exec(`
		INSERT INTO users (first_name, last_name, date_of_birth, phone_number, email, password_hash, role)
		VALUES ('admin', 'admin', '1990-03-29', '0000000000', $1, $2, 'ADMIN')
		ON CONFLICT (email) DO NOTHING
	`, cfg.AdminEmail, hash)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		fmt.Printf("admin %s already present\n", cfg.AdminEmail)
		return
	}
	fmt.Printf("seeded admin user: email=%s\n", cfg.AdminEmail)
}
