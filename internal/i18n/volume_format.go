package i18n

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/clearbrook/driplog/internal/measure"
)

// singular, paucal (2-4), plural — English only uses the first two.
var unitNames = map[string]map[measure.Unit][3]string{
	LangEN: {
		measure.Milliliters: {"milliliter", "milliliters", "milliliters"},
		measure.Liters:      {"liter", "liters", "liters"},
		measure.FluidOunces: {"fluid ounce", "fluid ounces", "fluid ounces"},
		measure.Cups:        {"cup", "cups", "cups"},
		measure.Pints:       {"pint", "pints", "pints"},
		measure.Quarts:      {"quart", "quarts", "quarts"},
		measure.Gallons:     {"gallon", "gallons", "gallons"},
	},
	LangRU: {
		measure.Milliliters: {"миллилитр", "миллилитра", "миллилитров"},
		measure.Liters:      {"литр", "литра", "литров"},
		measure.FluidOunces: {"жидкая унция", "жидкие унции", "жидких унций"},
		measure.Cups:        {"чашка", "чашки", "чашек"},
		measure.Pints:       {"пинта", "пинты", "пинт"},
		measure.Quarts:      {"кварта", "кварты", "кварт"},
		measure.Gallons:     {"галлон", "галлона", "галлонов"},
	},
}

var progressLabelFormats = map[string]string{
	LangEN: "%s out of %s consumed",
	LangRU: "%s из %s выпито",
}

// FormatVolume renders a volume as localized text in its natural
// display unit with at most one fractional digit. Pure function; an
// unsupported language falls back to the default.
func FormatVolume(volume measure.Volume, language string) string {
	language = NormalizeLanguage(language)
	natural := volume.Converted(volume.NaturalUnit())
	rounded := math.Round(natural.Value*10) / 10

	names := unitNames[language][natural.Unit]
	return formatNumber(rounded, language) + " " + pluralForm(rounded, language, names)
}

// FormatProgressLabel renders the "X out of Y consumed" progress line.
func FormatProgressLabel(consumed measure.Volume, goal measure.Volume, language string) string {
	language = NormalizeLanguage(language)
	return fmt.Sprintf(progressLabelFormats[language], FormatVolume(consumed, language), FormatVolume(goal, language))
}

func formatNumber(value float64, language string) string {
	text := strconv.FormatFloat(value, 'f', -1, 64)
	if language == LangRU {
		text = strings.Replace(text, ".", ",", 1)
	}
	return text
}

func pluralForm(value float64, language string, forms [3]string) string {
	if language == LangRU {
		return russianPluralForm(value, forms)
	}
	if value == 1 {
		return forms[0]
	}
	return forms[1]
}

func russianPluralForm(value float64, forms [3]string) string {
	if value != math.Trunc(value) {
		return forms[1]
	}

	tail := int64(value) % 100
	if tail >= 11 && tail <= 14 {
		return forms[2]
	}
	switch tail % 10 {
	case 1:
		return forms[0]
	case 2, 3, 4:
		return forms[1]
	default:
		return forms[2]
	}
}
