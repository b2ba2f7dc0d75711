package config

import "sort"

// Material presets for common large-format extrusion feedstocks.
var Materials = map[string]Material{
	"pla": {
		Conductivity: 0.13,
		SpecificHeat: 1800.0,
		Density:      1.24,
	},
	"abs": {
		Conductivity: 0.17,
		SpecificHeat: 1470.0,
		Density:      1.05,
	},
	"petg": {
		Conductivity: 0.2,
		SpecificHeat: 1200.0,
		Density:      1.27,
	},
	"cf-abs": {
		Conductivity: 0.4,
		SpecificHeat: 1350.0,
		Density:      1.11,
	},
}

func GetMaterial(name string) (Material, bool) {
	m, ok := Materials[name]
	return m, ok
}

func ListMaterials() []string {
	names := make([]string, 0, len(Materials))
	for name := range Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
