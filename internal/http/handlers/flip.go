package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"coinflip3d/internal/logger"
)

const defaultHistoryLimit = 20

// StartSession issues an anonymous player and its token.
func (h *Handler) StartSession(c *gin.Context) {
	sess, err := h.Flips.StartSession(c.Request.Context())
	if err != nil {
		logger.Error("Handler.StartSession: failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// Flip plans a flip for the client to play back with its own tween engine.
func (h *Handler) Flip(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	planned, err := h.Flips.Plan(c.Request.Context(), playerID)
	if err != nil {
		logger.Error("Handler.Flip: plan failed", "error", err, "player_id", playerID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "flip failed"})
		return
	}
	c.JSON(http.StatusOK, planned)
}

// History lists the caller's recent flips, newest first.
func (h *Handler) History(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	flips, err := h.Flips.History(c.Request.Context(), playerID, limit)
	if err != nil {
		logger.Error("Handler.History: failed", "error", err, "player_id", playerID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flips": flips})
}

// Stats returns heads/tails totals, optionally over a trailing window
// such as ?window=24h.
func (h *Handler) Stats(c *gin.Context) {
	var since time.Time
	if v := c.Query("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window"})
			return
		}
		since = time.Now().Add(-d)
	}

	stats, err := h.Flips.Stats(c.Request.Context(), since)
	if err != nil {
		logger.Error("Handler.Stats: failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"heads":       stats.Heads,
		"tails":       stats.Tails,
		"total":       stats.Total(),
		"heads_ratio": stats.HeadsRatio(),
	})
}

// Settings exposes the flip tuning so clients can size their UI.
func (h *Handler) Settings(c *gin.Context) {
	s := h.Flips.Settings()
	c.JSON(http.StatusOK, gin.H{
		"total_duration":  s.TotalDuration.Seconds(),
		"peak_height":     s.PeakHeight,
		"ascend_fraction": s.AscendFraction,
		"spin_min":        s.SpinMin,
		"spin_max":        s.SpinMax,
		"snap_mode":       s.SnapMode,
	})
}
