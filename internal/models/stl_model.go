package models

import "time"

// STLModel represents a 3D-printable model listed on the marketplace.
// A price of 0.0 means the model is free; IsFree is advisory and is not
// forced to match the price.
type STLModel struct {
	ID                 uint               `json:"id" gorm:"primaryKey"`
	Title              string             `json:"title" gorm:"type:varchar(255);index;not null"`
	Description        string             `json:"description" gorm:"type:text"`
	FileURL            string             `json:"file_url" gorm:"type:varchar(500)"`
	ImageURL           string             `json:"image_url" gorm:"type:varchar(500)"`
	Price              float64            `json:"price" gorm:"default:0.0"`
	IsFree             bool               `json:"is_free" gorm:"default:false"`
	OwnerID            uint               `json:"owner_id" gorm:"index;not null"`
	MaterialProperties []MaterialProperty `json:"material_properties" gorm:"foreignKey:ModelID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
