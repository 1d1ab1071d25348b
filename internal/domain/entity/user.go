package entity

import "time"

// User representa una cuenta que emite comandos contra el motor.
// Role es "sales" o "manager" (ver domain.RoleAllows).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string
	Status       string  // active, inactive, suspended
	OwnerID      *string // asesor vinculado, si la cuenta es de un vendedor
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
