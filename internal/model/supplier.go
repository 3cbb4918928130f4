package model

type Supplier struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	ContactName string `gorm:"type:varchar(255)" json:"contact_name"`
	Email       string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Phone       string `gorm:"type:varchar(50)" json:"phone"`
	Address     string `gorm:"type:text" json:"address"`
	Notes       string `gorm:"type:text" json:"notes"`
}
