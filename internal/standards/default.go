package standards

func f(v float64) *float64 { return &v }

// defaultTable holds drinking-water permissible limits. Heavy metals are in mg/L.
var defaultTable = []ParameterStandard{
	{Name: PH, Label: "pH", Unit: "pH", Category: CategoryPhysical, Min: f(6.5), Max: f(8.5)},
	{Name: Temperature, Label: "Temperature", Unit: "°C", Category: CategoryPhysical, Max: f(30)},
	{Name: Turbidity, Label: "Turbidity", Unit: "NTU", Category: CategoryPhysical, Max: f(5)},
	{Name: TotalDissolvedSolids, Label: "Total Dissolved Solids", Unit: "mg/L", Category: CategoryPhysical, Max: f(500)},
	{Name: Conductivity, Label: "Electrical Conductivity", Unit: "µS/cm", Category: CategoryPhysical, Max: f(1500)},

	{Name: DissolvedOxygen, Label: "Dissolved Oxygen", Unit: "mg/L", Category: CategoryChemical, Min: f(5)},
	{Name: BOD, Label: "Biochemical Oxygen Demand", Unit: "mg/L", Category: CategoryChemical, Max: f(3)},
	{Name: COD, Label: "Chemical Oxygen Demand", Unit: "mg/L", Category: CategoryChemical, Max: f(10)},
	{Name: Alkalinity, Label: "Total Alkalinity", Unit: "mg/L", Category: CategoryChemical, Max: f(200)},
	{Name: Hardness, Label: "Total Hardness", Unit: "mg/L", Category: CategoryChemical, Max: f(300)},

	{Name: Arsenic, Label: "Arsenic", Unit: "mg/L", Category: CategoryHeavyMetal, Max: f(0.01)},
	{Name: Lead, Label: "Lead", Unit: "mg/L", Category: CategoryHeavyMetal, Max: f(0.01)},
	{Name: Mercury, Label: "Mercury", Unit: "mg/L", Category: CategoryHeavyMetal, Max: f(0.001)},
	{Name: Cadmium, Label: "Cadmium", Unit: "mg/L", Category: CategoryHeavyMetal, Max: f(0.003)},
	{Name: Chromium, Label: "Chromium", Unit: "mg/L", Category: CategoryHeavyMetal, Max: f(0.05)},
	{Name: Nickel, Label: "Nickel", Unit: "mg/L", Category: CategoryHeavyMetal, Max: f(0.02)},
	{Name: Copper, Label: "Copper", Unit: "mg/L", Category: CategoryHeavyMetal, Max: f(0.05)},
	{Name: Zinc, Label: "Zinc", Unit: "mg/L", Category: CategoryHeavyMetal, Max: f(5)},
	{Name: Iron, Label: "Iron", Unit: "mg/L", Category: CategoryHeavyMetal, Max: f(0.3)},
	{Name: Manganese, Label: "Manganese", Unit: "mg/L", Category: CategoryHeavyMetal, Max: f(0.1)},

	{Name: Nitrate, Label: "Nitrate", Unit: "mg/L", Category: CategoryNutrient, Max: f(45)},
	{Name: Nitrite, Label: "Nitrite", Unit: "mg/L", Category: CategoryNutrient, Max: f(3)},
	{Name: Ammonia, Label: "Ammonia", Unit: "mg/L", Category: CategoryNutrient, Max: f(0.5)},
	{Name: Phosphate, Label: "Phosphate", Unit: "mg/L", Category: CategoryNutrient, Max: f(0.1)},

	{Name: TotalColiform, Label: "Total Coliform", Unit: "MPN/100mL", Category: CategoryMicrobiological, Max: f(0)},
	{Name: FecalColiform, Label: "Fecal Coliform", Unit: "MPN/100mL", Category: CategoryMicrobiological, Max: f(0)},
	{Name: EColi, Label: "E. coli", Unit: "MPN/100mL", Category: CategoryMicrobiological, Max: f(0)},
}

// Default returns a registry with the built-in standards table.
func Default() *Registry {
	return New(defaultTable...)
}
