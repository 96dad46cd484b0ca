package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleettrack/internal/config"
	"fleettrack/internal/models"
)

// CreateVehicle registers a new fleet vehicle; defaults InService to true
func CreateVehicle(c *gin.Context) {
	var input struct {
		Registration string `json:"registration" binding:"required"`
		Make         string `json:"make"`
		VehicleType  string `json:"vehicle_type" binding:"required"`
		DriverID     uint   `json:"driver_id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle input: " + err.Error()})
		return
	}

	vehicle := models.Vehicle{
		Registration: input.Registration,
		Make:         input.Make,
		VehicleType:  input.VehicleType,
		DriverID:     input.DriverID,
		InService:    true,
	}

	if err := config.DB.Create(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

func ListVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := config.DB.Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing vehicles: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

func GetVehicle(c *gin.Context) {
	id := c.Param("id")

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

func UpdateVehicle(c *gin.Context) {
	id := c.Param("id")

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	if err := c.ShouldBindJSON(&vehicle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}

	config.DB.Save(&vehicle)
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

func DeleteVehicle(c *gin.Context) {
	id := c.Param("id")

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	config.DB.Delete(&vehicle)
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted"})
}
