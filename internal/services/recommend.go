package services

import "github.com/clearbrook/driplog/internal/measure"

// MaximumDailyIntakeOz caps goal input. Arbitrary ceiling above the
// usual ~100 fl oz daily recommendation, leaving room for over
// achievers.
const MaximumDailyIntakeOz = 150.0

const (
	defaultRecommendedIntakeOz = 100.0
	recommendedOuncesPerPound  = 2.0 / 3.0
)

// RecommendedDailyIntake suggests a daily goal from body mass: two
// thirds of a fluid ounce per pound, or the default when no mass is
// known.
func RecommendedDailyIntake(mass *measure.Mass) measure.Volume {
	if mass == nil {
		return measure.FluidOuncesOf(defaultRecommendedIntakeOz)
	}
	return measure.FluidOuncesOf(mass.Pounds() * recommendedOuncesPerPound)
}
