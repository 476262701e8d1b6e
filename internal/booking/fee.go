package booking

import "doctor-booking-server/internal/models"

// Percentages applied to the base fee. Order matters only for the final
// rounding, which happens once.
const (
	firstTimePercent = 80
	insuredPercent   = 70
)

var typePercent = map[models.ConsultationType]int64{
	models.ConsultationInPerson: 100,
	models.ConsultationVideo:    90,
	models.ConsultationChat:     80,
	models.ConsultationAudio:    85,
}

// ComputeFee prices a consultation in minor currency units from a base fee
// in whole units. The consultation type discount comes first, then the
// first-time discount, then insurance coverage; the result is rounded half
// up.
func ComputeFee(base int64, t models.ConsultationType, firstTime, insured bool) int64 {
	if base <= 0 {
		return 0
	}
	pct, ok := typePercent[t]
	if !ok {
		pct = 100
	}

	num, den := base*100*pct, int64(100)
	if firstTime {
		num *= firstTimePercent
		den *= 100
	}
	if insured {
		num *= insuredPercent
		den *= 100
	}
	return (num + den/2) / den
}
