package models

// Link is a typed reference to another resource, as used in thing descriptions.
type Link struct {
	Rel       string `json:"rel,omitempty" msgpack:"rel,omitempty"`
	Href      string `json:"href" msgpack:"href"`
	MediaType string `json:"mediaType,omitempty" msgpack:"mediaType,omitempty"`
}

// PropertyMetadata describes a property and the constraints on its value.
type PropertyMetadata struct {
	AtType      string   `json:"@type,omitempty"`
	Type        string   `json:"type"` // "number", "integer", "boolean", "string" or "null"
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	ReadOnly    bool     `json:"readOnly,omitempty"`
	Links       []Link   `json:"links,omitempty"`
}

// ThingDescription is the document served at the root of the thing.
type ThingDescription struct {
	Context             string                      `json:"@context"`
	Type                []string                    `json:"@type"`
	ID                  string                      `json:"id"`
	Title               string                      `json:"title"`
	Description         string                      `json:"description,omitempty"`
	Properties          map[string]PropertyMetadata `json:"properties"`
	Links               []Link                      `json:"links"`
	Base                string                      `json:"base,omitempty"`
	SecurityDefinitions map[string]SecurityScheme   `json:"securityDefinitions"`
	Security            string                      `json:"security"`
}

// SecurityScheme names how clients authenticate. Only "nosec" is used.
type SecurityScheme struct {
	Scheme string `json:"scheme"`
}

// Float returns a pointer to v, for optional metadata bounds.
func Float(v float64) *float64 {
	return &v
}
