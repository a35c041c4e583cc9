package app

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type slotsRequest struct {
	WorkshopID  string `json:"workshopId" binding:"required"`
	ServiceType string `json:"serviceType"`
	Date        string `json:"date" binding:"required"`
	Duration    int    `json:"duration"`
}

type slotEntry struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type slotsResponse struct {
	Success bool        `json:"success"`
	Slots   []slotEntry `json:"slots"`
	Message string      `json:"message,omitempty"`
}

// POST /api/bookings/slots
// Customer-facing transport: JSON body, slot objects with an availability
// flag, business-empty days as successful responses with a message.
func (a *App) BookingSlotsHandler(c *gin.Context) {
	var req slotsRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	result, err := a.AvailableSlots(c.Request.Context(), req.WorkshopID, "", req.Date, req.Duration)
	if err != nil {
		a.slotsError(c, err)
		return
	}

	slots := make([]slotEntry, 0, len(result.Slots))
	for _, name := range result.Slots {
		slots = append(slots, slotEntry{Time: name, Available: true})
	}
	c.JSON(http.StatusOK, slotsResponse{Success: true, Slots: slots, Message: result.Message})
}

// GET /api/workshops/:id/slots?date=YYYY-MM-DD&duration=60&employeeId=...
// Operator/widget transport: bare slot names, configuration problems as 4xx.
func (a *App) WorkshopSlotsHandler(c *gin.Context) {
	workshopID := c.Param("id")
	date := c.Query("date")
	employeeID := c.Query("employeeId")

	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workshopId and date required"})
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	duration, err := strconv.Atoi(c.DefaultQuery("duration", strconv.Itoa(defaultSlotMinutes)))
	if err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
		return
	}

	result, err := a.AvailableSlots(c.Request.Context(), workshopID, employeeID, date, duration)
	if err != nil {
		a.slotsError(c, err)
		return
	}

	response := gin.H{"availableSlots": result.Slots}
	if result.Message != "" {
		response["message"] = result.Message
	}
	c.JSON(http.StatusOK, response)
}

// slotsError maps the availability error taxonomy onto HTTP statuses:
// missing entities 404, configuration problems 400 with remediation guidance,
// everything else a generic 500.
func (a *App) slotsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrWorkshopNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "workshop not found"})
	case errors.Is(err, ErrEmployeeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
	default:
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   cfgErr.Reason,
				"message": cfgErr.Message,
				"details": cfgErr.Details,
			})
			return
		}
		a.Logger.Error().Err(err).Msg("slot computation failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal error",
			"message": "failed to load available slots",
		})
	}
}
