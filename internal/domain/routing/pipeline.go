package routing

import (
	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
)

// statusRank orden del pipeline. won y lost comparten rango terminal.
var statusRank = map[string]int{
	entity.StatusNew:       0,
	entity.StatusContacted: 1,
	entity.StatusQualified: 2,
	entity.StatusFollowup:  3,
	entity.StatusWon:       4,
	entity.StatusLost:      4,
}

// CanTransition valida un cambio de estado del pipeline. Las transiciones son
// monótonas hacia adelante (se permite saltar etapas, no retroceder). Un lead
// terminal solo puede reabrirse a un estado no terminal si allowReopen está activo.
func CanTransition(from, to string, allowReopen bool) error {
	fromRank, ok := statusRank[from]
	if !ok {
		return domain.ErrInvalidInput
	}
	toRank, ok := statusRank[to]
	if !ok {
		return domain.ErrInvalidInput
	}
	if from == to {
		return domain.ErrInvalidTransition
	}

	if fromRank == 4 { // terminal
		if allowReopen && toRank < 4 {
			return nil
		}
		return domain.ErrInvalidTransition
	}
	if toRank <= fromRank {
		return domain.ErrInvalidTransition
	}
	return nil
}
