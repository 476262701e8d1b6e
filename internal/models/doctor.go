package models

// Coordinates is a latitude/longitude pair for the map view.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is the clinic address of a doctor.
type Location struct {
	Address     string       `json:"address"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	ZipCode     string       `json:"zipCode"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// TimeSlot is a bookable half hour on a given day.
type TimeSlot struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	IsBooked bool   `json:"isBooked"`
}

// Doctor is a catalog entry decorated with its generated slots.
type Doctor struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Specialty       string     `json:"specialty"`
	Image           string     `json:"image"`
	Experience      int        `json:"experience"`
	Rating          float64    `json:"rating"`
	PatientsServed  int        `json:"patientsServed"`
	Education       []string   `json:"education"`
	Description     string     `json:"description"`
	Languages       []string   `json:"languages"`
	Awards          []string   `json:"awards"`
	Location        *Location  `json:"location,omitempty"`
	ConsultationFee int64      `json:"consultationFee"`
	AvailableSlots  []TimeSlot `json:"availableSlots"`
}
