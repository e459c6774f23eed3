package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airport is reference data resolving an IATA code to the registry airport id
type Airport struct {
	ID        uint
	Code      string
	Name      string
	City      string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
