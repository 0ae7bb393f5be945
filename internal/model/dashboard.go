package model

import "github.com/google/uuid"

type DashboardStats struct {
	Today             string `json:"today"`
	TotalAppointments int    `json:"totalAppointments"`
	Completed         int    `json:"completed"`
	Pending           int    `json:"pending"`
	Cancelled         int    `json:"cancelled"`
	NoShow            int    `json:"noShow"`
	WaitingQueueCount int    `json:"waitingQueueCount"`
	TotalStaff        int    `json:"totalStaff"`
	AvailableStaff    int    `json:"availableStaff"`
}

type StaffLoad struct {
	ID                  uuid.UUID          `json:"id"`
	Name                string             `json:"name"`
	StaffType           StaffType          `json:"staffType"`
	CurrentAppointments int                `json:"currentAppointments"`
	DailyCapacity       int                `json:"dailyCapacity"`
	AvailabilityStatus  AvailabilityStatus `json:"availabilityStatus"`
	IsAtCapacity        bool               `json:"isAtCapacity"`
	LoadStatus          string             `json:"loadStatus"`
}

const (
	LoadStatusBooked = "Booked"
	LoadStatusOK     = "OK"
)
