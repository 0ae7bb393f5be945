package model

// Service is a bookable offering. Duration is in minutes.
type Service struct {
	Base
	ServiceName       string    `json:"serviceName" db:"service_name"`
	Duration          int       `json:"duration" db:"duration"`
	RequiredStaffType StaffType `json:"requiredStaffType" db:"required_staff_type"`
}

type CreateServiceRequest struct {
	ServiceName       string    `json:"serviceName" binding:"required,min=1,max=255"`
	Duration          int       `json:"duration" binding:"required,oneof=15 30 60"`
	RequiredStaffType StaffType `json:"requiredStaffType" binding:"required,stafftype"`
}

type UpdateServiceRequest struct {
	ServiceName       *string    `json:"serviceName" binding:"omitempty,min=1,max=255"`
	Duration          *int       `json:"duration" binding:"omitempty,oneof=15 30 60"`
	RequiredStaffType *StaffType `json:"requiredStaffType" binding:"omitempty,stafftype"`
}
