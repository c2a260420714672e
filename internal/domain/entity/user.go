package entity

import "time"

// User actor al que se atribuyen los movimientos (auditoría).
type User struct {
	ID        string
	Name      string
	Email     string
	Active    bool
	CreatedAt time.Time
}
