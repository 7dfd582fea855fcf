package measure

type MassUnit string

const (
	Pounds    MassUnit = "lb"
	Kilograms MassUnit = "kg"
)

const poundsPerKilogram = 2.2046226218

type Mass struct {
	Value float64  `json:"value"`
	Unit  MassUnit `json:"unit"`
}

func (m Mass) Pounds() float64 {
	if m.Unit == Kilograms {
		return m.Value * poundsPerKilogram
	}
	return m.Value
}
