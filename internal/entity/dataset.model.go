package entity

import "time"

// Dataset is one uploaded CSV file. Equipment rows are deleted together with
// their dataset, so a retention sweep never leaves orphans.
type Dataset struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	Name       string      `json:"name" gorm:"type:varchar(255)"`
	UploadedAt time.Time   `json:"uploaded_at" gorm:"index"`
	Equipments []Equipment `json:"equipments,omitempty" gorm:"foreignKey:DatasetID;constraint:OnDelete:CASCADE"`
}
