package catalog

import "doctor-booking-server/internal/models"

const imageBase = "https://images.unsplash.com/"
const imageParams = "?auto=format&fit=crop&q=80&w=300&h=300"

var specialties = []string{
	"Cardiologist",
	"Dermatologist",
	"Pediatrician",
	"Neurologist",
	"Orthopedist",
	"Psychiatrist",
	"Dentist",
	"Ophthalmologist",
	"ENT Specialist",
	"Gynecologist",
}

func image(photo string) string {
	return imageBase + photo + imageParams
}

func seed() []models.Doctor {
	return []models.Doctor{
		{
			ID:              "1",
			Name:            "Dr. Rajesh Sharma",
			Specialty:       "Cardiologist",
			Image:           image("photo-1537368910025-700350fe46c7"),
			Experience:      15,
			Rating:          4.9,
			PatientsServed:  8000,
			Education:       []string{"MD in Cardiology - AIIMS Delhi", "DM Cardiology - PGI Chandigarh"},
			Description:     "Expert in interventional cardiology and heart disease management.",
			Languages:       []string{"English", "Hindi", "Punjabi"},
			Awards:          []string{"Best Cardiologist 2023 - Times Health"},
			ConsultationFee: 1500,
		},
		{
			ID:              "2",
			Name:            "Dr. Priya Mehta",
			Specialty:       "Cardiologist",
			Image:           image("photo-1594824476967-48c8b964273f"),
			Experience:      12,
			Rating:          4.8,
			PatientsServed:  6000,
			Education:       []string{"MD Cardiology - KEM Hospital Mumbai", "Fellowship in Cardiac Electrophysiology - UK"},
			Description:     "Specialized in cardiac rhythm disorders and pacemaker implantation.",
			Languages:       []string{"English", "Hindi", "Gujarati"},
			Awards:          []string{"Young Investigator Award - CSI"},
			ConsultationFee: 1800,
		},
		{
			ID:              "3",
			Name:            "Dr. Anjali Desai",
			Specialty:       "Dermatologist",
			Image:           image("photo-1559839734-2b71ea197ec2"),
			Experience:      10,
			Rating:          4.9,
			PatientsServed:  12000,
			Education:       []string{"MD Dermatology - JIPMER", "Fellowship in Cosmetic Dermatology - Singapore"},
			Description:     "Expert in advanced skincare and aesthetic procedures.",
			Languages:       []string{"English", "Hindi", "Marathi"},
			Awards:          []string{"Best Dermatologist - Cosmetic Clinic Awards 2023"},
			ConsultationFee: 1200,
		},
		{
			ID:              "4",
			Name:            "Dr. Kabir Malhotra",
			Specialty:       "Dermatologist",
			Image:           image("photo-1622253692010-333f2da6031d"),
			Experience:      8,
			Rating:          4.7,
			PatientsServed:  9000,
			Education:       []string{"MD Dermatology - MAMC Delhi", "Advanced Training in Trichology - Mumbai"},
			Description:     "Specialized in hair restoration and skin disorders.",
			Languages:       []string{"English", "Hindi", "Punjabi"},
			Awards:          []string{"Rising Star in Dermatology 2022"},
			ConsultationFee: 1000,
		},
		{
			ID:              "5",
			Name:            "Dr. Meera Reddy",
			Specialty:       "Pediatrician",
			Image:           image("photo-1623854767648-e7bb8009f0db"),
			Experience:      14,
			Rating:          4.9,
			PatientsServed:  15000,
			Education:       []string{"MD Pediatrics - CMC Vellore", "Fellowship in Neonatology - USA"},
			Description:     "Experienced in newborn care and pediatric emergencies.",
			Languages:       []string{"English", "Hindi", "Telugu"},
			Awards:          []string{"Excellence in Child Care 2023"},
			ConsultationFee: 1000,
		},
		{
			ID:              "6",
			Name:            "Dr. Arjun Nair",
			Specialty:       "Pediatrician",
			Image:           image("photo-1612349317150-e413f6a5b16d"),
			Experience:      11,
			Rating:          4.8,
			PatientsServed:  11000,
			Education:       []string{"MD Pediatrics - KGMU Lucknow", "DNB Pediatrics"},
			Description:     "Specialized in pediatric respiratory disorders.",
			Languages:       []string{"English", "Hindi", "Malayalam"},
			Awards:          []string{"Best Pediatrician - Kerala Medical Awards"},
			ConsultationFee: 900,
		},
		{
			ID:              "7",
			Name:            "Dr. Sanjay Gupta",
			Specialty:       "Neurologist",
			Image:           image("photo-1612349316228-5942a9b489c2"),
			Experience:      20,
			Rating:          4.9,
			PatientsServed:  18000,
			Education:       []string{"DM Neurology - NIMHANS Bangalore", "Research Fellowship - Johns Hopkins"},
			Description:     "Expert in stroke management and neurological disorders.",
			Languages:       []string{"English", "Hindi", "Bengali"},
			Awards:          []string{"Lifetime Achievement in Neurology 2022"},
			ConsultationFee: 2000,
		},
		{
			ID:              "8",
			Name:            "Dr. Neha Kapoor",
			Specialty:       "Neurologist",
			Image:           image("photo-1594824476967-48c8b964273f"),
			Experience:      13,
			Rating:          4.8,
			PatientsServed:  9000,
			Education:       []string{"DM Neurology - AIIMS Delhi", "Fellowship in Epilepsy - UK"},
			Description:     "Specialized in epilepsy management and headache disorders.",
			Languages:       []string{"English", "Hindi", "Punjabi"},
			Awards:          []string{"Young Neurologist Award 2023"},
			ConsultationFee: 1800,
		},
		{
			ID:              "9",
			Name:            "Dr. Vikram Singh",
			Specialty:       "Orthopedist",
			Image:           image("photo-1537368910025-700350fe46c7"),
			Experience:      16,
			Rating:          4.9,
			PatientsServed:  14000,
			Education:       []string{"MS Orthopedics - PGIMER Chandigarh", "Fellowship in Joint Replacement - Germany"},
			Description:     "Expert in joint replacement and sports injuries.",
			Languages:       []string{"English", "Hindi", "Punjabi"},
			Awards:          []string{"Best Orthopedic Surgeon 2023"},
			ConsultationFee: 1500,
		},
		{
			ID:              "10",
			Name:            "Dr. Arun Kumar",
			Specialty:       "Orthopedist",
			Image:           image("photo-1622253692010-333f2da6031d"),
			Experience:      12,
			Rating:          4.7,
			PatientsServed:  10000,
			Education:       []string{"MS Orthopedics - JIPMER", "Fellowship in Spine Surgery - USA"},
			Description:     "Specialized in spine surgery and minimally invasive procedures.",
			Languages:       []string{"English", "Hindi", "Tamil"},
			Awards:          []string{"Excellence in Spine Surgery 2022"},
			ConsultationFee: 1400,
		},
	}
}
