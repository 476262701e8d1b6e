// Package booking drives the three step booking flow and its checkout.
package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"doctor-booking-server/internal/models"
)

// Step is a stage of the booking flow.
type Step string

const (
	StepType    Step = "type"
	StepSlot    Step = "slot"
	StepPayment Step = "payment"
)

var (
	ErrSlotRequired = errors.New("select a time slot to continue")
	ErrWrongStep    = errors.New("action not allowed at this step")
	ErrUnknownType  = errors.New("unknown consultation type")
	ErrSlotBooked   = errors.New("slot is already booked")
)

// Insurance holds the optional coverage details entered at payment.
type Insurance struct {
	Provider     string `json:"provider"`
	PolicyNumber string `json:"policyNumber"`
	HolderName   string `json:"holderName"`
}

// Flow is one user's in-progress booking with a doctor.
type Flow struct {
	ID               string                  `json:"id"`
	UserID           string                  `json:"-"`
	DoctorID         string                  `json:"doctorId"`
	DoctorName       string                  `json:"doctorName"`
	Step             Step                    `json:"step"`
	ConsultationType models.ConsultationType `json:"consultationType"`
	Slot             *models.TimeSlot        `json:"slot,omitempty"`
	Insurance        Insurance               `json:"insurance"`
	BaseFee          int64                   `json:"baseFee"`
	FirstTime        bool                    `json:"firstTime"`
	Fee              int64                   `json:"feeMinor"`
	CreatedAt        time.Time               `json:"createdAt"`
}

// NewFlow opens a flow at the type step with an in-person consultation.
func NewFlow(id, userID string, doctor *models.Doctor, firstTime bool, now time.Time) *Flow {
	f := &Flow{
		ID:               id,
		UserID:           userID,
		DoctorID:         doctor.ID,
		DoctorName:       doctor.Name,
		Step:             StepType,
		ConsultationType: models.ConsultationInPerson,
		BaseFee:          doctor.ConsultationFee,
		FirstTime:        firstTime,
		CreatedAt:        now,
	}
	f.reprice()
	return f
}

// Next advances one step. Payment needs a selected slot; at payment Next
// stays put.
func (f *Flow) Next() error {
	switch f.Step {
	case StepType:
		f.Step = StepSlot
	case StepSlot:
		if f.Slot == nil {
			return ErrSlotRequired
		}
		f.Step = StepPayment
	}
	return nil
}

// Back goes one step back; at type Back stays put.
func (f *Flow) Back() {
	switch f.Step {
	case StepPayment:
		f.Step = StepSlot
	case StepSlot:
		f.Step = StepType
	}
}

func (f *Flow) SelectType(t models.ConsultationType) error {
	if f.Step != StepType {
		return fmt.Errorf("%w: consultation type is chosen at the %s step", ErrWrongStep, StepType)
	}
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	f.ConsultationType = t
	f.reprice()
	return nil
}

func (f *Flow) SelectSlot(slot models.TimeSlot) error {
	if f.Step != StepSlot {
		return fmt.Errorf("%w: slots are chosen at the %s step", ErrWrongStep, StepSlot)
	}
	if slot.IsBooked {
		return ErrSlotBooked
	}
	f.Slot = &slot
	return nil
}

// SetInsurance records coverage; a blank provider means uninsured.
func (f *Flow) SetInsurance(in Insurance) {
	in.Provider = strings.TrimSpace(in.Provider)
	f.Insurance = in
	f.reprice()
}

// SetFirstTime records whether this is the user's first booking.
func (f *Flow) SetFirstTime(firstTime bool) {
	f.FirstTime = firstTime
	f.reprice()
}

// Insured reports whether an insurance provider has been entered.
func (f *Flow) Insured() bool {
	return f.Insurance.Provider != ""
}

func (f *Flow) reprice() {
	f.Fee = ComputeFee(f.BaseFee, f.ConsultationType, f.FirstTime, f.Insured())
}
