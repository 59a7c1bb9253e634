package models

type Contact struct {
	Base
	Name        string  `json:"name" gorm:"size:100;not null"`
	Email       string  `json:"email" gorm:"size:255;not null;index"`
	Phone       *string `json:"phone,omitempty" gorm:"size:30"`
	Description string  `json:"description" gorm:"type:text;not null"`
}

func (c *Contact) HasPhone() bool {
	return c.Phone != nil && *c.Phone != ""
}
