package heat

// Each Normalize* method maps a physical value to simulation units and the
// matching Denormalize* method is its exact algebraic inverse.

func (c PhysicalConstants) NormalizeDistance(x float64) float64 {
	return x / c.HalfThickness
}

func (c PhysicalConstants) DenormalizeDistance(x float64) float64 {
	return x * c.HalfThickness
}

func (c PhysicalConstants) NormalizeTime(t float64) float64 {
	return t * c.ThermalConductivity / c.timeScale()
}

func (c PhysicalConstants) DenormalizeTime(t float64) float64 {
	return t * c.timeScale() / c.ThermalConductivity
}

func (c PhysicalConstants) NormalizeTemperature(t float64) float64 {
	return t * c.ThermalConductivity / c.temperatureScale()
}

func (c PhysicalConstants) DenormalizeTemperature(t float64) float64 {
	return t * c.temperatureScale() / c.ThermalConductivity
}

// timeScale is Cv·ρ·L².
func (c PhysicalConstants) timeScale() float64 {
	return c.HeatCapacity * c.Density * c.HalfThickness * c.HalfThickness
}

// temperatureScale is κ·V²/2, the Joule heating per unit volume.
func (c PhysicalConstants) temperatureScale() float64 {
	return c.ElectricalConductivity * c.Voltage * c.Voltage / 2
}
