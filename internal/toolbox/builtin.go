package toolbox

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// now is swapped in tests
var now = time.Now

// GetCurrentTime returns the local time as HH:MM:SS
func GetCurrentTime(_ context.Context, _ struct{}) (string, error) {
	return now().Format("15:04:05"), nil
}

// WeatherArgs are the arguments of get_weather
type WeatherArgs struct {
	City string `json:"city" description:"The city to report on"`
}

var conditions = []string{"Sunny", "Rainy", "Cloudy", "Snowing"}

// GetWeather reports simulated weather for a city
func GetWeather(_ context.Context, args WeatherArgs) (string, error) {
	temp := rand.IntN(41) - 5 // -5..35
	return fmt.Sprintf("Weather in %s: %s, %d°C", args.City, conditions[rand.IntN(len(conditions))], temp), nil
}

// BMIArgs are the arguments of calculate_bmi
type BMIArgs struct {
	WeightKg float64 `json:"weight_kg" description:"Weight in kilograms"`
	HeightM  float64 `json:"height_m" description:"Height in meters"`
}

// CalculateBMI computes the body mass index. A zero height is reported in the
// result text so the model can relay it.
func CalculateBMI(_ context.Context, args BMIArgs) (string, error) {
	if args.HeightM == 0 {
		return "Error: Height cannot be zero.", nil
	}
	bmi := args.WeightKg / (args.HeightM * args.HeightM)
	return fmt.Sprintf("BMI is %.2f", bmi), nil
}
