package template

import (
	"sort"

	"github.com/flowfolio/portfolio-server-go/internal/model"
)

// Descriptor describes one renderable portfolio template. The server never
// renders templates itself; it hands the descriptor to the web client, which
// mounts the matching implementation keyed by ComponentName. Descriptors
// carry no credential data.
type Descriptor struct {
	ComponentName string             `json:"componentName"`
	Kind          model.TemplateKind `json:"kind"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	// Fields lists the input surface for form templates. Chat templates
	// have a fixed single-message surface and leave this empty.
	Fields []Field `json:"fields,omitempty"`
}

type Field struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
}

// ComingSoon is the fallback descriptor mounted whenever a site has no
// active mapping or the mapped component is unknown. Registering a site
// ahead of building its template must never break navigation.
var ComingSoon = &Descriptor{
	ComponentName: "ComingSoonTemplate",
	Kind:          model.TemplateKindComingSoon,
	Title:         "Coming Soon",
}

// Registry is a static lookup from component name to descriptor. It replaces
// dynamic import-by-filename: unknown names miss the map instead of failing
// at load time.
type Registry struct {
	templates map[string]*Descriptor
}

func NewRegistry(descriptors ...*Descriptor) *Registry {
	r := &Registry{templates: make(map[string]*Descriptor, len(descriptors))}
	for _, d := range descriptors {
		r.templates[d.ComponentName] = d
	}
	return r
}

// Lookup returns the descriptor for componentName, or false when the name is
// not registered. Callers treat a miss as a soft fallback, not an error.
func (r *Registry) Lookup(componentName string) (*Descriptor, bool) {
	d, ok := r.templates[componentName]
	return d, ok
}

// List returns all registered descriptors sorted by component name.
func (r *Registry) List() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.templates))
	for _, d := range r.templates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ComponentName < out[j].ComponentName
	})
	return out
}

// Default returns the registry of built-in templates shipped with the
// generated portfolio sites.
func Default() *Registry {
	return NewRegistry(
		&Descriptor{
			ComponentName: "ChatbotTemplate",
			Kind:          model.TemplateKindChat,
			Title:         "Chat Assistant",
			Description:   "Conversational interface backed by an automation workflow",
		},
		&Descriptor{
			ComponentName: "VideoGeneratorTemplate",
			Kind:          model.TemplateKindForm,
			Title:         "Video Generator",
			Description:   "Submit a topic and receive a generated video",
			Fields: []Field{
				{Name: "topic", Label: "Topic", Type: "text", Required: true},
				{Name: "style", Label: "Style", Type: "text"},
			},
		},
		&Descriptor{
			ComponentName: "LeadCaptureTemplate",
			Kind:          model.TemplateKindForm,
			Title:         "Lead Capture",
			Description:   "Collects contact details and forwards them to a CRM workflow",
			Fields: []Field{
				{Name: "name", Label: "Name", Type: "text", Required: true},
				{Name: "email", Label: "Email", Type: "email", Required: true},
				{Name: "message", Label: "Message", Type: "textarea"},
			},
		},
	)
}
