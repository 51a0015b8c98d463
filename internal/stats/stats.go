// Package stats computes aggregate statistics over a dataset's equipment
// rows. Every call re-derives from the store, so summaries and reports can
// never disagree.
package stats

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/equipstat/equipstat/internal/apierror"
	"github.com/equipstat/equipstat/internal/entity"
	"gorm.io/gorm"
)

// TypeCount is one entry of the type distribution.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Distribution preserves first-encounter order of equipment types. It
// marshals to a JSON object whose keys appear in that order.
type Distribution []TypeCount

func (d Distribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tc := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(tc.Type)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		count, err := json.Marshal(tc.Count)
		if err != nil {
			return nil, err
		}
		buf.Write(count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type Averages struct {
	Flowrate    float64 `json:"flowrate"`
	Pressure    float64 `json:"pressure"`
	Temperature float64 `json:"temperature"`
}

type Summary struct {
	DatasetID    uint         `json:"dataset_id"`
	DatasetName  string       `json:"dataset_name"`
	UploadedAt   time.Time    `json:"uploaded_at"`
	TotalCount   int          `json:"total_count"`
	Averages     Averages     `json:"averages"`
	Distribution Distribution `json:"type_distribution"`
}

// Load fetches a dataset and its rows in primary key order. It returns a
// not-found error when the dataset does not exist or has no rows.
func Load(db *gorm.DB, datasetID uint) (*entity.Dataset, []entity.Equipment, error) {
	var dataset entity.Dataset
	if err := db.First(&dataset, datasetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierror.NewNotFoundError("dataset not found")
		}
		return nil, nil, err
	}

	var rows []entity.Equipment
	if err := db.Where("dataset_id = ?", dataset.ID).Order("id").Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, apierror.NewNotFoundError("no equipment data found")
	}

	return &dataset, rows, nil
}

// Summarize computes the aggregation for one dataset.
func Summarize(db *gorm.DB, datasetID uint) (*Summary, error) {
	dataset, rows, err := Load(db, datasetID)
	if err != nil {
		return nil, err
	}
	return FromRows(dataset, rows), nil
}

// FromRows builds the summary for already-loaded rows. The type
// distribution follows the order types are first encountered while
// scanning.
func FromRows(dataset *entity.Dataset, rows []entity.Equipment) *Summary {
	var flowrate, pressure, temperature float64
	seen := make(map[string]int)
	var distribution Distribution

	for _, row := range rows {
		flowrate += row.Flowrate
		pressure += row.Pressure
		temperature += row.Temperature

		if idx, ok := seen[row.Type]; ok {
			distribution[idx].Count++
		} else {
			seen[row.Type] = len(distribution)
			distribution = append(distribution, TypeCount{Type: row.Type, Count: 1})
		}
	}

	summary := &Summary{
		DatasetID:    dataset.ID,
		DatasetName:  dataset.Name,
		UploadedAt:   dataset.UploadedAt,
		TotalCount:   len(rows),
		Distribution: distribution,
	}
	if n := float64(len(rows)); n > 0 {
		summary.Averages = Averages{
			Flowrate:    Round2(flowrate / n),
			Pressure:    Round2(pressure / n),
			Temperature: Round2(temperature / n),
		}
	}
	return summary
}

// Round2 rounds to two decimal places with round-half-to-even semantics,
// matching the formatting used in the PDF report.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
