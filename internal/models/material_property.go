package models

// MaterialProperty holds print recommendations for one filament type of an
// STL model. A model can carry zero or more of these.
type MaterialProperty struct {
	ID                     uint    `json:"id" gorm:"primaryKey"`
	ModelID                uint    `json:"model_id" gorm:"index;not null"`
	FilamentType           string  `json:"filament_type" gorm:"type:varchar(100)"` // PLA, PETG, ABS, etc.
	EstimatedWeight        float64 `json:"estimated_weight"`                       // in grams
	PrintTime              int     `json:"print_time"`                             // in minutes
	RecommendedTemperature int     `json:"recommended_temperature"`
}
