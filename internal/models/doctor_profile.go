package models

import "time"

// ProfileStatus is the review state of a doctor onboarding profile.
type ProfileStatus string

const (
	ProfilePending  ProfileStatus = "pending"
	ProfileApproved ProfileStatus = "approved"
	ProfileRejected ProfileStatus = "rejected"
)

// DoctorProfile is submitted by a doctor during onboarding and reviewed by an admin.
type DoctorProfile struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Mobile          string        `json:"mobile,omitempty"`
	Specialty       string        `json:"specialty"`
	Experience      int           `json:"experience"`
	Qualifications  []string      `json:"qualifications"`
	RegistrationNo  string        `json:"registrationNumber"`
	ConsultationFee int64         `json:"consultationFee"`
	Status          ProfileStatus `json:"status"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	SubmittedAt     time.Time     `json:"submittedAt"`
	ReviewedAt      *time.Time    `json:"reviewedAt,omitempty"`
}
