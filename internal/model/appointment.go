package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "No-Show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled || s == AppointmentStatusNoShow
}

// Appointment is a customer booking. A nil StaffID on a Scheduled
// appointment means it is waiting in the queue.
type Appointment struct {
	Base
	CustomerName    string            `json:"customerName" db:"customer_name"`
	ServiceID       uuid.UUID         `json:"serviceId" db:"service_id"`
	StaffID         *uuid.UUID        `json:"staffId" db:"staff_id"`
	AppointmentDate string            `json:"appointmentDate" db:"appointment_date"`
	AppointmentTime string            `json:"appointmentTime" db:"appointment_time"`
	Status          AppointmentStatus `json:"status" db:"status"`
}

// AppointmentDetail is an appointment joined with its service and staff for display.
type AppointmentDetail struct {
	Appointment
	ServiceName     string  `json:"serviceName" db:"service_name"`
	ServiceDuration int     `json:"serviceDuration" db:"service_duration"`
	StaffName       *string `json:"staffName" db:"staff_name"`
}

// ScheduledSlot is the minimal shape the conflict checker needs.
type ScheduledSlot struct {
	AppointmentID   uuid.UUID `db:"id"`
	AppointmentTime string    `db:"appointment_time"`
	Duration        int       `db:"duration"`
}

type AppointmentFilters struct {
	Date    string
	StaffID *uuid.UUID
	Status  AppointmentStatus
}

type CreateAppointmentRequest struct {
	CustomerName    string     `json:"customerName" binding:"required,min=1,max=255"`
	ServiceID       uuid.UUID  `json:"serviceId" binding:"required"`
	StaffID         *uuid.UUID `json:"staffId"`
	AppointmentDate string     `json:"appointmentDate" binding:"required,apptdate"`
	AppointmentTime string     `json:"appointmentTime" binding:"required,appttime"`
}

type UpdateAppointmentRequest struct {
	CustomerName    *string            `json:"customerName" binding:"omitempty,min=1,max=255"`
	ServiceID       *uuid.UUID         `json:"serviceId"`
	StaffID         *uuid.UUID         `json:"staffId"`
	AppointmentDate *string            `json:"appointmentDate" binding:"omitempty,apptdate"`
	AppointmentTime *string            `json:"appointmentTime" binding:"omitempty,appttime"`
	Status          *AppointmentStatus `json:"status" binding:"omitempty,apptstatus"`
}

// TouchesSchedule reports whether the update moves the appointment in time,
// onto other staff, or onto a service with a different duration.
func (r *UpdateAppointmentRequest) TouchesSchedule() bool {
	return r.StaffID != nil || r.AppointmentDate != nil || r.AppointmentTime != nil || r.ServiceID != nil
}

type CreateAppointmentResult struct {
	Appointment   *Appointment `json:"appointment"`
	AddedToQueue  bool         `json:"addedToQueue"`
	QueuePosition int          `json:"queuePosition,omitempty"`
	Message       string       `json:"message"`
}
