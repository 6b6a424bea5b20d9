package round

import "github.com/KirkDiggler/spyround/internal/models"

type SaveRoundInput struct {
	Round *models.Round
}

type GetRoundInput struct {
	TableID string
}

type DeleteRoundInput struct {
	TableID string
}
