package models

import (
	"time"
)

type Customer struct {
	ID         string    `json:"customer_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	City       string    `json:"city"`
	SignupDate time.Time `json:"signup_date"`
}
