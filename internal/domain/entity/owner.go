package entity

import "time"

// Owner representa un asesor de ventas con cupo de leads.
// CurrentLoad cuenta SOLO leads asignados en estado no terminal y es propiedad
// exclusiva del registro de asesores: nada fuera del motor de asignación lo muta.
// Frozen se activa si se detecta una carga inconsistente (ej. decremento bajo cero);
// un asesor congelado no acepta mutaciones hasta reconciliación manual.
type Owner struct {
	ID          string
	Name        string
	Email       string
	Capacity    int
	CurrentLoad int
	Available   bool
	Frozen      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AtCapacity responde si el asesor no tiene cupo libre.
func (o *Owner) AtCapacity() bool {
	return o.CurrentLoad >= o.Capacity
}

// FreeSlots devuelve el cupo libre (nunca negativo).
func (o *Owner) FreeSlots() int {
	if o.CurrentLoad >= o.Capacity {
		return 0
	}
	return o.Capacity - o.CurrentLoad
}

// Assignable responde si el asesor puede recibir un lead sin override.
func (o *Owner) Assignable() bool {
	return o.Available && !o.Frozen && !o.AtCapacity()
}
