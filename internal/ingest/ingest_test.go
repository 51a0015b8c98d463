package ingest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/equipstat/equipstat/internal/entity"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.Dataset{}, &entity.Equipment{}))
	return db
}

func sampleRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{
			Name:        fmt.Sprintf("Pump %d", i+1),
			Type:        "Pump",
			Flowrate:    float64(i + 1),
			Pressure:    float64(i + 2),
			Temperature: float64(i + 3),
		}
	}
	return rows
}

func TestIngest_CreatesDatasetAndRows(t *testing.T) {
	db := newTestDB(t)

	result, err := Ingest(db, "plant.csv", sampleRows(3))
	require.NoError(t, err)
	require.Equal(t, "plant.csv", result.DatasetName)
	require.Equal(t, 3, result.Count)
	require.Len(t, result.Equipments, 3)
	require.NotZero(t, result.DatasetID)
	require.False(t, result.UploadedAt.IsZero())

	var datasets int64
	require.NoError(t, db.Model(&entity.Dataset{}).Count(&datasets).Error)
	require.EqualValues(t, 1, datasets)

	var equipment int64
	require.NoError(t, db.Model(&entity.Equipment{}).Count(&equipment).Error)
	require.EqualValues(t, 3, equipment)
}

func TestIngest_EmptyRowsStillCreatesDataset(t *testing.T) {
	db := newTestDB(t)

	result, err := Ingest(db, "empty.csv", nil)
	require.NoError(t, err)
	require.Equal(t, 0, result.Count)

	var dataset entity.Dataset
	require.NoError(t, db.First(&dataset, result.DatasetID).Error)
}

func TestIngest_RetentionKeepsFiveNewest(t *testing.T) {
	db := newTestDB(t)

	var ids []uint
	for i := 1; i <= 6; i++ {
		result, err := Ingest(db, fmt.Sprintf("upload-%d.csv", i), sampleRows(2))
		require.NoError(t, err)
		ids = append(ids, result.DatasetID)
	}

	var remaining []entity.Dataset
	require.NoError(t, db.Order("id").Find(&remaining).Error)
	require.Len(t, remaining, MaxDatasets)

	// The first upload is the one evicted.
	for _, dataset := range remaining {
		require.NotEqual(t, ids[0], dataset.ID)
	}

	// Its equipment rows are gone with it.
	var orphaned int64
	require.NoError(t, db.Model(&entity.Equipment{}).Where("dataset_id = ?", ids[0]).Count(&orphaned).Error)
	require.EqualValues(t, 0, orphaned)

	var equipment int64
	require.NoError(t, db.Model(&entity.Equipment{}).Count(&equipment).Error)
	require.EqualValues(t, MaxDatasets*2, equipment)
}

func TestEnforceRetention_Idempotent(t *testing.T) {
	db := newTestDB(t)

	for i := 1; i <= 7; i++ {
		_, err := Ingest(db, fmt.Sprintf("upload-%d.csv", i), sampleRows(1))
		require.NoError(t, err)
	}

	require.NoError(t, EnforceRetention(db))
	require.NoError(t, EnforceRetention(db))

	var datasets int64
	require.NoError(t, db.Model(&entity.Dataset{}).Count(&datasets).Error)
	require.EqualValues(t, MaxDatasets, datasets)
}

func TestEnforceRetention_NoopUnderCap(t *testing.T) {
	db := newTestDB(t)

	_, err := Ingest(db, "only.csv", sampleRows(1))
	require.NoError(t, err)

	require.NoError(t, EnforceRetention(db))

	var datasets int64
	require.NoError(t, db.Model(&entity.Dataset{}).Count(&datasets).Error)
	require.EqualValues(t, 1, datasets)
}
