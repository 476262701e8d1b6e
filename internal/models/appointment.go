package models

import "gorm.io/gorm"

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ConsultationType is how the patient meets the doctor.
type ConsultationType string

const (
	ConsultationInPerson ConsultationType = "in-person"
	ConsultationVideo    ConsultationType = "video"
	ConsultationChat     ConsultationType = "chat"
	ConsultationAudio    ConsultationType = "audio"
)

// Valid reports whether t is one of the known consultation types.
func (t ConsultationType) Valid() bool {
	switch t {
	case ConsultationInPerson, ConsultationVideo, ConsultationChat, ConsultationAudio:
		return true
	}
	return false
}

// Appointment is a booked consultation slot. An appointment that is not
// cancelled holds its doctor slot.
type Appointment struct {
	BaseModel
	UserID           string            `gorm:"size:64;index" json:"userId"`
	DoctorID         string            `gorm:"size:36;index:idx_doctor_slot" json:"doctorId"`
	SlotID           string            `gorm:"size:32;index:idx_doctor_slot" json:"slotId"`
	Date             string            `gorm:"size:10;index" json:"date"`
	Time             string            `gorm:"size:8" json:"time"`
	ConsultationType ConsultationType  `gorm:"size:20" json:"consultationType"`
	Fee              int64             `json:"feeMinor"`
	PaymentID        string            `gorm:"size:64" json:"paymentId,omitempty"`
	Status           AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	Notes            string            `gorm:"type:text" json:"notes,omitempty"`
	// SlotHold is doctorID|slotID while the appointment is active and NULL
	// once cancelled, so the unique index admits one active booking per slot.
	SlotHold *string `gorm:"size:80;uniqueIndex" json:"-"`
}

// BeforeSave keeps SlotHold in step with Status.
func (a *Appointment) BeforeSave(tx *gorm.DB) error {
	a.SlotHold = nil
	if a.Active() {
		hold := a.DoctorID + "|" + a.SlotID
		a.SlotHold = &hold
	}
	return nil
}

// Active reports whether the appointment still holds its slot.
func (a *Appointment) Active() bool {
	return a.Status != StatusCancelled
}
