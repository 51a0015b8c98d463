package entity

// Equipment is a single measured row from an uploaded CSV. Rows are created
// only during ingestion and never mutated afterwards.
type Equipment struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	DatasetID   uint    `json:"dataset_id" gorm:"index;not null"`
	Name        string  `json:"equipment_name" gorm:"type:varchar(255)"`
	Type        string  `json:"equipment_type" gorm:"type:varchar(100)"`
	Flowrate    float64 `json:"flowrate"`
	Pressure    float64 `json:"pressure"`
	Temperature float64 `json:"temperature"`
}
