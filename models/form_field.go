package models

// FormField names a contact field the public request form can collect
type FormField string

const (
	FormFieldName        FormField = "name"
	FormFieldEmail       FormField = "email"
	FormFieldPhone       FormField = "phone"
	FormFieldAddress     FormField = "address"
	FormFieldDates       FormField = "dates"
	FormFieldDescription FormField = "description"
)

// Input kinds rendered by the public form
const (
	InputKindText      = "text"
	InputKindEmail     = "email"
	InputKindTel       = "tel"
	InputKindTextarea  = "textarea"
	InputKindDateRange = "date-range"
)

// FormFieldSpec describes how a registered field is collected
type FormFieldSpec struct {
	Name      FormField `json:"name"`
	Label     string    `json:"label"`
	InputKind string    `json:"input_kind"`
	Required  bool      `json:"required"`
}

// formFieldRegistry is the closed, ordered set of fields the request form knows about
var formFieldRegistry = []FormFieldSpec{
	{Name: FormFieldName, Label: "Name", InputKind: InputKindText, Required: true},
	{Name: FormFieldEmail, Label: "Email", InputKind: InputKindEmail, Required: true},
	{Name: FormFieldPhone, Label: "Phone", InputKind: InputKindTel},
	{Name: FormFieldAddress, Label: "Address", InputKind: InputKindText},
	{Name: FormFieldDates, Label: "Preferred dates", InputKind: InputKindDateRange},
	{Name: FormFieldDescription, Label: "What would you like to learn?", InputKind: InputKindTextarea},
}

// FormFieldRegistry returns a copy of every registered field in display order
func FormFieldRegistry() []FormFieldSpec {
	out := make([]FormFieldSpec, len(formFieldRegistry))
	copy(out, formFieldRegistry)
	return out
}

// Enabled reports whether the toggles turn on the given field
func (t FormFieldToggles) Enabled(field FormField) bool {
	switch field {
	case FormFieldName, FormFieldEmail:
		return true
	case FormFieldPhone:
		return t.Phone
	case FormFieldAddress:
		return t.Address
	case FormFieldDates:
		return t.Dates
	case FormFieldDescription:
		return t.Description
	}
	return false
}

// EnabledFormFields filters the registry down to the fields the teacher collects
func EnabledFormFields(toggles FormFieldToggles) []FormFieldSpec {
	var fields []FormFieldSpec
	for _, f := range formFieldRegistry {
		if toggles.Enabled(f.Name) {
			fields = append(fields, f)
		}
	}
	return fields
}
