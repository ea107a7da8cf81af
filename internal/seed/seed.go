// Package seed populates a development database with demo donors,
// hospitals and a sample emergency request around Delhi.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/internal/usecase"
)

// Delhi bounding box.
const (
	latSouth = 28.40
	latNorth = 28.88
	lngWest  = 76.84
	lngEast  = 77.35
)

var hospitalNames = []string{
	"All India Institute of Medical Sciences (AIIMS)",
	"Fortis Hospital Shalimar Bagh",
	"Apollo Hospital",
	"Max Super Speciality Hospital",
	"Sir Ganga Ram Hospital",
	"Safdarjung Hospital",
	"Lok Nayak Hospital",
	"Maharaja Agrasen Hospital",
}

var firstNames = []string{
	"Aarav", "Vivaan", "Aditya", "Arjun", "Ishaan", "Pranav",
	"Ananya", "Diya", "Priya", "Kavya", "Riya", "Avni",
	"Rahul", "Amit", "Deepak", "Sunita", "Pooja", "Neha",
}

var lastNames = []string{
	"Sharma", "Verma", "Gupta", "Singh", "Kumar", "Agarwal",
	"Arora", "Kapoor", "Saxena", "Mishra", "Yadav", "Joshi",
}

var services = []string{"Emergency", "Surgery", "Blood Bank", "ICU", "Trauma Center"}

// Run seeds deterministic demo data through the normal registration and
// request flows so every invariant holds for seeded records too.
func Run(ctx context.Context, auth *usecase.AuthUsecase, requests *usecase.RequestUsecase, logger *zap.Logger) error {
	rng := rand.New(rand.NewSource(42))

	point := func() domain.GeoPoint {
		return domain.GeoPoint{
			Longitude: lngWest + rng.Float64()*(lngEast-lngWest),
			Latitude:  latSouth + rng.Float64()*(latNorth-latSouth),
		}
	}

	var hospitalAuth *usecase.AuthResult
	for i, name := range hospitalNames {
		_, result, err := auth.RegisterHospital(ctx, usecase.RegisterHospitalInput{
			Name:               name,
			Email:              fmt.Sprintf("hospital%d@bloodlink.demo", i+1),
			Password:           "demo-password",
			Phone:              fmt.Sprintf("+91-11-%07d", 1000000+i),
			RegistrationNumber: fmt.Sprintf("DL-HOSP-%04d", i+1),
			Location:           point(),
			Address:            fmt.Sprintf("%d Hospital Road", i+1),
			City:               "Delhi",
			State:              "Delhi",
			Pincode:            fmt.Sprintf("1100%02d", i+1),
			ContactPerson: domain.ContactPerson{
				Name:        "Duty Manager",
				Designation: "Blood Bank In-charge",
				Phone:       fmt.Sprintf("+91-98%08d", i+1),
			},
			Services: services[:2+rng.Intn(len(services)-2)],
		})
		if err != nil {
			// Seeding reruns hit unique constraints; treat as already seeded.
			logger.Info("Seed skipped, data already present", zap.Error(err))
			return nil
		}
		if hospitalAuth == nil {
			hospitalAuth = result
		}
	}

	for i := 0; i < 60; i++ {
		name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
		_, _, err := auth.RegisterDonor(ctx, usecase.RegisterDonorInput{
			Name:                name,
			Email:               fmt.Sprintf("donor%d@bloodlink.demo", i+1),
			Password:            "demo-password",
			Phone:               fmt.Sprintf("+91-97%08d", i+1),
			BloodType:           domain.AllBloodTypes[rng.Intn(len(domain.AllBloodTypes))],
			Location:            point(),
			Address:             "Delhi",
			MaxDistanceKm:       1 + rng.Intn(50),
			IsEmergencyEligible: rng.Intn(2) == 0,
		})
		if err != nil {
			return fmt.Errorf("failed to seed donor: %w", err)
		}
	}

	_, err := requests.Create(ctx, hospitalAuth.Identity, usecase.CreateRequestInput{
		PatientName:   "Demo Patient",
		PatientAge:    34,
		PatientGender: domain.GenderFemale,
		BloodType:     domain.ONegative,
		UnitsNeeded:   2,
		Urgency:       domain.UrgencyCritical,
		NeededBy:      time.Now().Add(12 * time.Hour),
		Description:   "Post-surgical transfusion, O- required urgently",
		IsEmergency:   true,
		ContactInfo: domain.ContactInfo{
			Phone: "+91-11-1000001",
			Email: "hospital1@bloodlink.demo",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to seed demo request: %w", err)
	}

	logger.Info("Demo data seeded",
		zap.Int("hospitals", len(hospitalNames)),
		zap.Int("donors", 60))
	return nil
}
