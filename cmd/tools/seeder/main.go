package main

import (
	"database/sql"
	"log"
	"os"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/noah-isme/backend-atacado/internal/app"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "file://migrations"
	}
	m, err := migrate.New(migrationsPath, dbURL)
	if err != nil {
		log.Fatalf("Failed to initialise migrations: %v", err)
	}
	if err := app.RunMigrations(m); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations applied")

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	productIDs := seedProducts(db)
	seedKits(db, productIDs)

	log.Println("Seeding completed successfully!")
}

// Prices are in centavos. The special price unlocks at the per-product
// wholesale quantity.
func seedProducts(db *sql.DB) map[string]string {
	products := []struct {
		Slug          string
		Name          string
		Description   string
		NormalPrice   int64
		SpecialPrice  int64
		SpecialMinQty int
		Stock         int
	}{
		{"capinha-transparente", "Capinha transparente", "Capinha TPU transparente para vários modelos", 1000, 700, 50, 5000},
		{"capinha-silicone", "Capinha de silicone", "Capinha de silicone com interior aveludado", 1200, 850, 50, 4000},
		{"pelicula-3d", "Película 3D", "Película de vidro 3D com bordas cobertas", 500, 350, 100, 10000},
		{"pelicula-privacidade", "Película de privacidade", "Película fumê anti-espião", 800, 550, 100, 6000},
		{"cabo-usb-c", "Cabo USB-C 1m", "Cabo USB-C reforçado de 1 metro", 1500, 1100, 30, 3000},
		{"cabo-lightning", "Cabo Lightning 1m", "Cabo Lightning certificado de 1 metro", 1800, 1300, 30, 2500},
		{"carregador-turbo-20w", "Carregador turbo 20W", "Carregador de parede USB-C PD 20W", 3500, 2800, 20, 1500},
		{"fone-bluetooth", "Fone Bluetooth TWS", "Fone sem fio com estojo de recarga", 4500, 3600, 20, 1200},
		{"suporte-veicular", "Suporte veicular", "Suporte magnético para painel", 2200, 1700, 30, 2000},
		{"caixinha-som-bt", "Caixinha de som Bluetooth", "Caixa de som portátil 5W", 6000, 4800, 10, 800},
	}

	log.Println("Seeding products...")
	ids := make(map[string]string, len(products))
	for _, p := range products {
		var id string
		err := db.QueryRow(`
			INSERT INTO products (slug, name, description, normal_price, special_price, special_price_min_qty, stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (slug) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				normal_price = EXCLUDED.normal_price,
				special_price = EXCLUDED.special_price,
				special_price_min_qty = EXCLUDED.special_price_min_qty,
				stock = EXCLUDED.stock,
				updated_at = now()
			RETURNING id;
		`, p.Slug, p.Name, p.Description, p.NormalPrice, p.SpecialPrice, p.SpecialMinQty, p.Stock).Scan(&id)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Slug, err)
			continue
		}
		ids[p.Slug] = id
	}
	return ids
}

func seedKits(db *sql.DB, productIDs map[string]string) {
	kits := []struct {
		Slug       string
		Name       string
		Discount   int64
		Components map[string]int
	}{
		{"kit-revenda-inicial", "Kit Revenda Inicial", 3000, map[string]int{
			"capinha-transparente": 10,
			"pelicula-3d":          10,
		}},
		{"kit-balcao-completo", "Kit Balcão Completo", 8000, map[string]int{
			"capinha-silicone":     20,
			"pelicula-privacidade": 20,
			"cabo-usb-c":           10,
		}},
		{"kit-energia", "Kit Energia", 5000, map[string]int{
			"cabo-usb-c":           15,
			"cabo-lightning":       15,
			"carregador-turbo-20w": 10,
		}},
	}

	log.Println("Seeding kits...")
	for _, k := range kits {
		var kitID string
		err := db.QueryRow(`
			INSERT INTO kits (slug, name, discount)
			VALUES ($1, $2, $3)
			ON CONFLICT (slug) DO UPDATE SET
				name = EXCLUDED.name,
				discount = EXCLUDED.discount,
				updated_at = now()
			RETURNING id;
		`, k.Slug, k.Name, k.Discount).Scan(&kitID)
		if err != nil {
			log.Printf("Failed to seed kit %s: %v", k.Slug, err)
			continue
		}

		if _, err := db.Exec(`DELETE FROM kit_components WHERE kit_id = $1`, kitID); err != nil {
			log.Printf("Failed to reset components of %s: %v", k.Slug, err)
			continue
		}
		for slug, qty := range k.Components {
			productID, ok := productIDs[slug]
			if !ok {
				log.Printf("Missing product %s for kit %s", slug, k.Slug)
				continue
			}
			if _, err := db.Exec(`
				INSERT INTO kit_components (kit_id, product_id, qty)
				VALUES ($1, $2, $3);
			`, kitID, productID, qty); err != nil {
				log.Printf("Failed to seed component %s of %s: %v", slug, k.Slug, err)
			}
		}
	}
}
