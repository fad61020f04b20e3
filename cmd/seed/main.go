// Command seed loads catalog fixtures from a YAML file into the database.
// Used to bootstrap a fresh environment with a starter product range.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/casekart/casekart/internal/config"
	"github.com/casekart/casekart/internal/models"
	"github.com/casekart/casekart/pkg/db"
)

type seedProduct struct {
	Name          string  `yaml:"name"`
	Model         string  `yaml:"model"`
	Image         string  `yaml:"image"`
	Description   string  `yaml:"description"`
	Price         float64 `yaml:"price"`
	DiscountPrice float64 `yaml:"discountPrice"`
	Category      string  `yaml:"category"`
	InStock       bool    `yaml:"inStock"`
}

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

func main() {
	path := flag.String("file", "seed/products.yaml", "path to the product fixtures file")
	flag.Parse()

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read fixtures: %v", err)
	}

	var fixtures seedFile
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		log.Fatalf("parse fixtures: %v", err)
	}
	if len(fixtures.Products) == 0 {
		log.Fatalf("no products in %s", *path)
	}

	gdb, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	created := 0
	for _, p := range fixtures.Products {
		product := models.Product{
			Name:          p.Name,
			Model:         p.Model,
			Image:         p.Image,
			Description:   p.Description,
			Price:         p.Price,
			DiscountPrice: p.DiscountPrice,
			Category:      p.Category,
			InStock:       p.InStock,
			Rating:        4.5,
		}

		tx := gdb.Where("name = ? AND model = ?", p.Name, p.Model).FirstOrCreate(&product)
		if tx.Error != nil {
			log.Fatalf("seed %q: %v", p.Name, tx.Error)
		}
		if tx.RowsAffected > 0 {
			created++
		}
	}

	log.Printf("seeded %d of %d products", created, len(fixtures.Products))
}
