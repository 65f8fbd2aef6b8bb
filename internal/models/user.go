package models

// User represents a registered account on the marketplace.
type User struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Email      string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password   string     `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never the plaintext
	FullName   string     `json:"full_name" gorm:"type:varchar(255)"`
	IsActive   bool       `json:"is_active" gorm:"default:true"`
	IsMerchant bool       `json:"is_merchant" gorm:"default:false"`
	Models     []STLModel `json:"-" gorm:"foreignKey:OwnerID"`
}
