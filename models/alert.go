package models

import (
	"time"
)

// TireAlertType represents different types of tire alerts
type TireAlertType string

const (
	PressureTooHigh     TireAlertType = "pressure_high"
	PressureTooLow      TireAlertType = "pressure_low"
	PressureImplausible TireAlertType = "pressure_implausible"
	TemperatureTooHigh  TireAlertType = "temperature_high"
	SensorAlertActive   TireAlertType = "sensor_alert"
	SensorLowBattery    TireAlertType = "sensor_low_battery"
)

// TireAlert represents a detected tire condition worth surfacing
type TireAlert struct {
	Type         TireAlertType `json:"type"`
	SensorID     SensorID      `json:"sensor_id"`
	Position     int           `json:"position"`
	PositionName string        `json:"position_name"`
	Value        float64       `json:"value"`
	Threshold    float64       `json:"threshold"`
	Timestamp    time.Time     `json:"timestamp"`
	Description  string        `json:"description"`
}

// GetAlertEmoji returns appropriate emoji for alert type
func (a *TireAlert) GetAlertEmoji() string {
	switch a.Type {
	case PressureTooHigh, PressureImplausible:
		return "💥"
	case PressureTooLow:
		return "🫥"
	case TemperatureTooHigh:
		return "🔥"
	case SensorAlertActive:
		return "🚨"
	case SensorLowBattery:
		return "🪫"
	default:
		return "⚠️"
	}
}

// GetSeverityColor returns color for Telegram formatting
func (a *TireAlert) GetSeverityColor() string {
	switch a.Type {
	case PressureTooLow, TemperatureTooHigh, SensorAlertActive:
		return "🔴" // Red for conditions needing immediate attention
	case PressureTooHigh, PressureImplausible:
		return "🟡" // Yellow for suspicious values
	case SensorLowBattery:
		return "🔵" // Blue for maintenance items
	default:
		return "⚪"
	}
}
