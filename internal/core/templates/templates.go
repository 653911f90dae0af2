// Package templates declares the built-in RV form layouts.
package templates

import "github.com/JonMunkholm/rvforms/internal/core"

// Semantic fields shared by the layouts.
const (
	FieldTag               core.SemanticField = "tag"
	FieldManufacturer      core.SemanticField = "manufacturer"
	FieldModel             core.SemanticField = "model"
	FieldProcessConnection core.SemanticField = "process connection"
	FieldImmersionLength   core.SemanticField = "immersion length"
	FieldControlSignal     core.SemanticField = "control signal"
	FieldMinRange          core.SemanticField = "min range"
	FieldMaxRange          core.SemanticField = "max range"
	FieldUnit              core.SemanticField = "unit"
	FieldOrderCode         core.SemanticField = "order code"
	FieldValveMakeModel    core.SemanticField = "valve make / model number"
	FieldActuatorMakeModel core.SemanticField = "actuator make / model number"
	FieldLineSize          core.SemanticField = "line size"
	FieldDialSetting       core.SemanticField = "dial setting"
	FieldFlowRate          core.SemanticField = "flow rate"
)

// HeaderKeywords mark the header row of an equipment schedule.
var HeaderKeywords = []string{
	"tag", "manufacturer", "model", "process connection", "immersion length",
	"control signal", "min range", "max range", "unit", "order code",
	"valve make / model number", "actuator make / model number",
	"line size", "dial setting", "flow rate",
}

// IdentifierLabels name the entity-number column, most common first.
var IdentifierLabels = []string{"no.", "no", "item no.", "item no", "instrument no."}

var (
	tagVariants               = []string{"Tag", "Instrument Tag", "BMS Tag"}
	processConnectionVariants = []string{"process connection", "connection"}
	controlSignalVariants     = []string{"control signal", "actuator control signal"}
)

// Instrument is the layout of the "RV Instrument" form.
func Instrument() core.TemplateDefinition {
	return core.TemplateDefinition{
		Info: core.TemplateInfo{
			Variant:    core.VariantInstrument,
			Label:      "RV Instrument",
			SheetMatch: "RV Instrument",
		},
		KeyField: FieldTag,
		Fields: []core.FieldSpec{
			{Field: FieldTag, Variants: tagVariants, Required: true, Cell: "A11"},
			{Field: FieldManufacturer, Variants: []string{"Manufacturer", "Instrument Manufacturer"}, Cell: "C11"},
			{Field: FieldModel, Variants: []string{"model", "instrument model", "model number"}, Cell: "E11"},
			{Field: FieldProcessConnection, Variants: processConnectionVariants, Cell: "A14"},
			{Field: FieldImmersionLength, Variants: []string{"immersion length", "Immersion Length (mm)"}, Cell: "B14"},
			{Field: FieldControlSignal, Variants: controlSignalVariants, Cell: "D14"},
			{Field: FieldMinRange, Variants: []string{"min range", "range min", "minimum range"}, Cell: "F14"},
			{Field: FieldMaxRange, Variants: []string{"max range", "range max", "maximum range"}, Cell: "G14"},
			{Field: FieldUnit, Variants: []string{"unit", "units"}, Cell: "H14"},
			{Field: FieldOrderCode, Variants: []string{"order code", "code"}, Cell: "G11"},
		},
		Constants:        []core.ConstantSlot{{Cell: "I14", Value: core.NotAvailable}},
		IdentifierLabels: IdentifierLabels,
		Keywords:         HeaderKeywords,
	}
}

// Valve is the layout of the "RV Valve" form.
func Valve() core.TemplateDefinition {
	return core.TemplateDefinition{
		Info: core.TemplateInfo{
			Variant:    core.VariantValve,
			Label:      "RV Valve",
			SheetMatch: "RV Valve",
		},
		KeyField: FieldTag,
		Fields: []core.FieldSpec{
			{Field: FieldTag, Variants: tagVariants, Required: true, Cell: "A11"},
			{Field: FieldValveMakeModel, Variants: []string{"valve make", "valve model", "valve make / model number"}, Cell: "C11"},
			{Field: FieldActuatorMakeModel, Variants: []string{"actuator make", "actuator model", "actuator make / model number"}, Cell: "F11"},
			{Field: FieldProcessConnection, Variants: processConnectionVariants, Cell: "A15"},
			{Field: FieldLineSize, Variants: []string{"line size", "Line Size (mm)"}, Cell: "B15"},
			{Field: FieldControlSignal, Variants: controlSignalVariants, Cell: "D13"},
			{Field: FieldDialSetting, Variants: []string{"dial setting", "setting"}, Cell: "F15"},
			{Field: FieldFlowRate, Variants: []string{"flow rate", "rate"}, Cell: "I15"},
		},
		IdentifierLabels: IdentifierLabels,
		Keywords:         HeaderKeywords,
	}
}

// Default returns a registry holding every built-in layout.
func Default() *core.Registry {
	return core.MustRegistry(Instrument(), Valve())
}
