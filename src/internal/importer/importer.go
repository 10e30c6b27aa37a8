package importer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/casapps/casrecipes/src/internal/services"
)

// Importer loads tag and ingredient reference data from JSON files,
// upserting by natural key so re-imports never duplicate rows.
type Importer struct {
	catalog *services.CatalogService
	logger  *slog.Logger
}

// New creates a new importer
func New(db *gorm.DB, cfg *viper.Viper) *Importer {
	return &Importer{
		catalog: services.NewCatalogService(db, cfg),
		logger:  slog.Default(),
	}
}

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagRecord struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// ImportIngredients reads an ingredient JSON file and upserts every record
func (i *Importer) ImportIngredients(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read ingredients file: %w", err)
	}

	var records []ingredientRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("failed to parse ingredients file: %w", err)
	}

	imported := 0
	for _, record := range records {
		if _, err := i.catalog.UpsertIngredient(record.Name, record.MeasurementUnit); err != nil {
			i.logger.Warn("skipping ingredient", "name", record.Name, "error", err)
			continue
		}
		imported++
	}

	i.logger.Info("ingredients import finished", "total", len(records), "imported", imported)
	return imported, nil
}

// ImportTags reads a tag JSON file and upserts every record
func (i *Importer) ImportTags(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read tags file: %w", err)
	}

	var records []tagRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("failed to parse tags file: %w", err)
	}

	imported := 0
	for _, record := range records {
		if _, err := i.catalog.UpsertTag(record.Name, record.Color, record.Slug); err != nil {
			i.logger.Warn("skipping tag", "name", record.Name, "error", err)
			continue
		}
		imported++
	}

	i.logger.Info("tags import finished", "total", len(records), "imported", imported)
	return imported, nil
}
