package dto

import "github.com/noah-isme/volunteer-hub-api/internal/models"

// CreateApplicationRequest is submitted by a volunteer. The volunteer is taken from the token.
type CreateApplicationRequest struct {
	EventID string  `json:"event" validate:"required,uuid"`
	Message *string `json:"message" validate:"omitempty,max=1000"`
}

// UpdateApplicationRequest is the only writable part of an application.
type UpdateApplicationRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required,oneof=pending approved rejected"`
}

// CertificateIssueResponse acknowledges a queued certificate.
type CertificateIssueResponse struct {
	ApplicationID string `json:"application_id"`
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
}
