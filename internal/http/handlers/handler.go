package handlers

import (
	"coinflip3d/internal/http/middleware"
	"coinflip3d/internal/service"
)

type Handler struct {
	Flips *service.FlipService
}

func NewHandler(flips *service.FlipService) *Handler {
	return &Handler{Flips: flips}
}

// getPlayerID извлекает player_id из контекста Gin
func getPlayerID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	v, ok := c.Get(middleware.PlayerKey)
	if !ok {
		return 0, false
	}
	switch id := v.(type) {
	case int64:
		return id, true
	case float64:
		return int64(id), true
	default:
		return 0, false
	}
}
