package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// catalogProduct mirrors one entry of the seed file
type catalogProduct struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Brand        *string  `json:"brand"`
	IsGlutenFree bool     `json:"isGlutenFree"`
	Price        *float64 `json:"price"`
	Notes        *string  `json:"notes"`
}

// Seeds the public product catalog from a JSON file. The catalog is owned by
// a dedicated user (PUBLIC_CATALOG_EMAIL) whose products every user can see.
func main() {
	file := flag.String("file", "scripts/import_products/products.json", "path to the product seed file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbURL := os.Getenv("POSTGRES_DB_URL")
	if dbURL == "" {
		log.Fatalf("POSTGRES_DB_URL environment variable not set")
	}

	catalogEmail := os.Getenv("PUBLIC_CATALOG_EMAIL")
	if catalogEmail == "" {
		catalogEmail = "admin@celiacapp.com"
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Unable to read seed file: %v", err)
	}

	var products []catalogProduct
	if err := json.Unmarshal(data, &products); err != nil {
		log.Fatalf("Unable to parse seed file: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	catalogUserID, err := ensureCatalogUser(ctx, pool, catalogEmail)
	if err != nil {
		log.Fatalf("Failed to ensure catalog user: %v", err)
	}

	imported := 0
	for _, p := range products {
		if p.Name == "" || p.Category == "" {
			log.Printf("Skipping entry with missing name or category: %+v", p)
			continue
		}

		// Idempotent on (owner, name): re-running the import updates rather
		// than duplicates.
		tag, err := pool.Exec(ctx, `
			UPDATE products
			SET category = $3, brand = $4, is_gluten_free = $5, price = $6, notes = $7, updated_at = NOW()
			WHERE user_id = $1 AND name = $2
		`, catalogUserID, p.Name, p.Category, p.Brand, p.IsGlutenFree, p.Price, p.Notes)
		if err != nil {
			log.Fatalf("Failed to update product %q: %v", p.Name, err)
		}
		if tag.RowsAffected() == 0 {
			_, err = pool.Exec(ctx, `
				INSERT INTO products (user_id, name, category, brand, is_gluten_free, price, notes)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, catalogUserID, p.Name, p.Category, p.Brand, p.IsGlutenFree, p.Price, p.Notes)
			if err != nil {
				log.Fatalf("Failed to insert product %q: %v", p.Name, err)
			}
		}
		imported++
	}

	fmt.Printf("Imported %d catalog products for %s\n", imported, catalogEmail)
}

// ensureCatalogUser returns the catalog user's ID, creating the account with
// an unusable random password if it does not exist yet
func ensureCatalogUser(ctx context.Context, pool *pgxpool.Pool, email string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword(randomBytes(32), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, 'Public Catalog', $2)
		RETURNING id
	`, email, string(hash)).Scan(&id)
	return id, err
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Failed to generate random password: %v", err)
	}
	return b
}
