package measure

// Unit is a fluid-volume unit. All stored quantities use FluidOunces
// as the base unit; other units exist for input and display.
type Unit string

const (
	Milliliters Unit = "ml"
	Liters      Unit = "l"
	FluidOunces Unit = "fl_oz"
	Cups        Unit = "cup"
	Pints       Unit = "pt"
	Quarts      Unit = "qt"
	Gallons     Unit = "gal"
)

// fluid ounces per one unit
var unitToFluidOunces = map[Unit]float64{
	Milliliters: 0.033814,
	Liters:      33.814,
	FluidOunces: 1.0,
	Cups:        8.0,
	Pints:       16.0,
	Quarts:      32.0,
	Gallons:     128.0,
}

func ParseUnit(raw string) (Unit, bool) {
	unit := Unit(raw)
	_, ok := unitToFluidOunces[unit]
	return unit, ok
}

type Volume struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func FluidOuncesOf(value float64) Volume {
	return Volume{Value: value, Unit: FluidOunces}
}

// Converted returns the same volume expressed in target. Unknown units
// are treated as the base unit.
func (v Volume) Converted(target Unit) Volume {
	fromFactor, ok := unitToFluidOunces[v.Unit]
	if !ok {
		fromFactor = 1.0
	}
	toFactor, ok := unitToFluidOunces[target]
	if !ok {
		toFactor = 1.0
		target = FluidOunces
	}
	return Volume{Value: v.Value * fromFactor / toFactor, Unit: target}
}

func (v Volume) FluidOunces() float64 {
	return v.Converted(FluidOunces).Value
}

// NaturalUnit picks the display unit a quantity reads best in: small
// volumes in fluid ounces, day-scale volumes in quarts, larger in
// gallons.
func (v Volume) NaturalUnit() Unit {
	ounces := v.FluidOunces()
	switch {
	case ounces < unitToFluidOunces[Quarts]:
		return FluidOunces
	case ounces < unitToFluidOunces[Gallons]:
		return Quarts
	default:
		return Gallons
	}
}
