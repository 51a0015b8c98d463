// Package ingest turns uploaded CSV files into persisted datasets and keeps
// the number of stored datasets bounded.
package ingest

import (
	"fmt"
	"time"

	"github.com/equipstat/equipstat/internal/entity"
	"gorm.io/gorm"
)

// MaxDatasets is the retention cap: after every successful ingestion only
// the newest MaxDatasets datasets remain.
const MaxDatasets = 5

// Result describes one completed ingestion, including every created row.
type Result struct {
	DatasetID   uint               `json:"dataset_id"`
	DatasetName string             `json:"dataset_name"`
	UploadedAt  time.Time          `json:"uploaded_at"`
	Count       int                `json:"equipment_count"`
	Equipments  []entity.Equipment `json:"equipment"`
}

// Ingest persists one dataset with all its rows and then applies the
// retention cap. The whole sequence runs in a single transaction, so a
// failure leaves no partial dataset behind.
func Ingest(db *gorm.DB, filename string, rows []Row) (*Result, error) {
	var result *Result

	err := db.Transaction(func(tx *gorm.DB) error {
		dataset := entity.Dataset{
			Name:       filename,
			UploadedAt: time.Now().UTC(),
		}
		if err := tx.Create(&dataset).Error; err != nil {
			return fmt.Errorf("failed to create dataset: %w", err)
		}

		equipments := make([]entity.Equipment, len(rows))
		for i, row := range rows {
			equipments[i] = entity.Equipment{
				DatasetID:   dataset.ID,
				Name:        row.Name,
				Type:        row.Type,
				Flowrate:    row.Flowrate,
				Pressure:    row.Pressure,
				Temperature: row.Temperature,
			}
		}
		if len(equipments) > 0 {
			if err := tx.Create(&equipments).Error; err != nil {
				return fmt.Errorf("failed to create equipment rows: %w", err)
			}
		}

		if err := EnforceRetention(tx); err != nil {
			return err
		}

		result = &Result{
			DatasetID:   dataset.ID,
			DatasetName: dataset.Name,
			UploadedAt:  dataset.UploadedAt,
			Count:       len(equipments),
			Equipments:  equipments,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// EnforceRetention deletes every dataset beyond the MaxDatasets most recent,
// together with its equipment rows. It is idempotent and safe to invoke on
// its own, outside an ingestion.
func EnforceRetention(db *gorm.DB) error {
	var stale []entity.Dataset
	if err := db.Order("uploaded_at DESC, id DESC").Offset(MaxDatasets).Find(&stale).Error; err != nil {
		return fmt.Errorf("failed to list datasets for retention: %w", err)
	}

	for _, dataset := range stale {
		if err := db.Where("dataset_id = ?", dataset.ID).Delete(&entity.Equipment{}).Error; err != nil {
			return fmt.Errorf("failed to delete equipment for dataset %d: %w", dataset.ID, err)
		}
		if err := db.Delete(&entity.Dataset{}, dataset.ID).Error; err != nil {
			return fmt.Errorf("failed to delete dataset %d: %w", dataset.ID, err)
		}
	}

	return nil
}
