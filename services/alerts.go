package services

import (
	"fmt"

	"github.com/k3vmcd/tirelinc/config"
	"github.com/k3vmcd/tirelinc/models"
)

type AlertDetector struct {
	config *config.Config
}

func NewAlertDetector(cfg *config.Config) *AlertDetector {
	return &AlertDetector{
		config: cfg,
	}
}

// DetectAlerts analyzes a decoded reading and returns any detected alerts.
// Spurious extreme values from the repeater are a known occurrence, so an
// implausibly high pressure is surfaced as its own alert rather than
// discarded with the reading.
func (ad *AlertDetector) DetectAlerts(reading *models.Reading, position int, positionName string) []*models.TireAlert {
	var alerts []*models.TireAlert

	base := models.TireAlert{
		SensorID:     reading.SensorID,
		Position:     position,
		PositionName: positionName,
		Timestamp:    reading.ObservedAt,
	}

	if reading.Pressure > ad.config.PressurePlausiblePSI {
		alert := base
		alert.Type = models.PressureImplausible
		alert.Value = reading.Pressure
		alert.Threshold = ad.config.PressurePlausiblePSI
		alert.Description = fmt.Sprintf("%s reports %.1f PSI, beyond the %.0f PSI plausibility bound; likely a spurious reading", positionName, reading.Pressure, ad.config.PressurePlausiblePSI)
		alerts = append(alerts, &alert)
	} else {
		if reading.Pressure > ad.config.PressureMaxPSI {
			alert := base
			alert.Type = models.PressureTooHigh
			alert.Value = reading.Pressure
			alert.Threshold = ad.config.PressureMaxPSI
			alert.Description = fmt.Sprintf("%s pressure %.1f PSI exceeds maximum threshold of %.1f PSI", positionName, reading.Pressure, ad.config.PressureMaxPSI)
			alerts = append(alerts, &alert)
		}

		if reading.Pressure < ad.config.PressureMinPSI {
			alert := base
			alert.Type = models.PressureTooLow
			alert.Value = reading.Pressure
			alert.Threshold = ad.config.PressureMinPSI
			alert.Description = fmt.Sprintf("%s pressure %.1f PSI is below minimum threshold of %.1f PSI", positionName, reading.Pressure, ad.config.PressureMinPSI)
			alerts = append(alerts, &alert)
		}
	}

	if float64(reading.Temperature) > ad.config.TemperatureMaxDeg {
		alert := base
		alert.Type = models.TemperatureTooHigh
		alert.Value = float64(reading.Temperature)
		alert.Threshold = ad.config.TemperatureMaxDeg
		alert.Description = fmt.Sprintf("%s temperature %d° exceeds maximum threshold of %.0f°", positionName, reading.Temperature, ad.config.TemperatureMaxDeg)
		alerts = append(alerts, &alert)
	}

	if reading.AlertActive() {
		alert := base
		alert.Type = models.SensorAlertActive
		alert.Value = reading.Pressure
		alert.Description = fmt.Sprintf("%s sensor raised its alert flag", positionName)
		alerts = append(alerts, &alert)
	}

	if reading.LowBattery() {
		alert := base
		alert.Type = models.SensorLowBattery
		alert.Description = fmt.Sprintf("%s sensor battery is low", positionName)
		alerts = append(alerts, &alert)
	}

	return alerts
}

// IsAlerting returns true if any alerts are detected
func (ad *AlertDetector) IsAlerting(reading *models.Reading, position int, positionName string) bool {
	return len(ad.DetectAlerts(reading, position, positionName)) > 0
}
