package api

import (
	"fmt"
	"strings"
)

// Field is one named form input forwarded verbatim to the backend.
type Field struct {
	Name      string
	Label     string
	Multiline bool
	// MinChars is the recommended minimum length; 0 disables the advice.
	MinChars int
}

// Module describes a generation workflow: its form, endpoint and output container.
type Module struct {
	ID          ModuleID
	Name        string
	ExportTitle string
	Endpoint    string
	ContainerID string
	Fields      []Field
}

// DefaultExportTitle is used for containers that belong to no module.
const DefaultExportTitle = "Output"

var modules = []Module{
	{
		ID:          ModuleMarketing,
		Name:        "Marketing Campaign Generator",
		ExportTitle: "Marketing_Campaign",
		Endpoint:    "/api/marketing",
		ContainerID: "mkt-output",
		Fields: []Field{
			{Name: "product", Label: "Product / Service"},
			{Name: "description", Label: "Description", Multiline: true, MinChars: 50},
			{Name: "audience", Label: "Target Audience"},
			{Name: "platform", Label: "Platform"},
		},
	},
	{
		ID:          ModuleSales,
		Name:        "Sales Pitch Generator",
		ExportTitle: "Sales_Pitch",
		Endpoint:    "/api/sales",
		ContainerID: "sales-output",
		Fields: []Field{
			{Name: "product", Label: "Product / Service"},
			{Name: "persona", Label: "Buyer Persona"},
			{Name: "industry", Label: "Industry"},
			{Name: "size", Label: "Company Size"},
			{Name: "budget", Label: "Budget"},
		},
	},
	{
		ID:          ModuleLead,
		Name:        "Lead Qualification & Scoring",
		ExportTitle: "Lead_Scoring",
		Endpoint:    "/api/lead-scoring",
		ContainerID: "lead-output",
		Fields: []Field{
			{Name: "product", Label: "Product / Service"},
			{Name: "icp", Label: "Ideal Customer Profile"},
			{Name: "valueProp", Label: "Value Proposition"},
			{Name: "leadData", Label: "Lead Data", Multiline: true, MinChars: 30},
		},
	},
}

// Modules returns the catalog in navigation order.
func Modules() []Module {
	return append([]Module(nil), modules...)
}

// ModuleNames returns the module ids as strings, for completion.
func ModuleNames() []string {
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		out = append(out, string(m.ID))
	}
	return out
}

// LookupModule resolves a module by id (case-insensitive). "lead-scoring"
// is accepted as an alias of lead, matching its endpoint name.
func LookupModule(id string) (Module, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "lead-scoring" {
		id = string(ModuleLead)
	}
	for _, m := range modules {
		if string(m.ID) == id {
			return m, nil
		}
	}
	return Module{}, fmt.Errorf("unknown module %q", id)
}

// ModuleForContainer returns the module that owns containerID.
func ModuleForContainer(containerID string) (Module, bool) {
	for _, m := range modules {
		if m.ContainerID == containerID {
			return m, true
		}
	}
	return Module{}, false
}

// TitleFor returns the export title for an output container.
func TitleFor(containerID string) string {
	if m, ok := ModuleForContainer(containerID); ok {
		return m.ExportTitle
	}
	return DefaultExportTitle
}

// Field returns the named field of the module.
func (m Module) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// NewRequest builds a request carrying exactly the module's fields. Missing
// values are sent as empty strings.
func (m Module) NewRequest(values map[string]string) GenerationRequest {
	payload := make(map[string]string, len(m.Fields))
	for _, f := range m.Fields {
		payload[f.Name] = values[f.Name]
	}
	return GenerationRequest{ModuleID: m.ID, Payload: payload}
}
