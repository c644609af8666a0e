package domain

// ServiceIcon is the closed set of icons a service offering can display
type ServiceIcon string

const (
	IconGeneralPest ServiceIcon = "general_pest"
	IconRodent      ServiceIcon = "rodent"
	IconTermite     ServiceIcon = "termite"
	IconBedBug      ServiceIcon = "bed_bug"
	IconBird        ServiceIcon = "bird"
	IconFumigation  ServiceIcon = "fumigation"
	IconWeed        ServiceIcon = "weed"
)

// Valid reports whether i is one of the known icons
func (i ServiceIcon) Valid() bool {
	switch i {
	case IconGeneralPest, IconRodent, IconTermite, IconBedBug, IconBird, IconFumigation, IconWeed:
		return true
	}
	return false
}

// Glyph is the symbol printed next to the service name on documents
func (i ServiceIcon) Glyph() string {
	switch i {
	case IconGeneralPest:
		return "🪳"
	case IconRodent:
		return "🐀"
	case IconTermite:
		return "🐜"
	case IconBedBug:
		return "🛏"
	case IconBird:
		return "🐦"
	case IconFumigation:
		return "☁"
	case IconWeed:
		return "🌿"
	}
	return "•"
}

// TemplateStep seeds one checkpoint when a template is loaded
type TemplateStep struct {
	AreaName    string `json:"areaName"`
	DefaultPest string `json:"defaultPest"`
	DefaultTask string `json:"defaultTask"`
}

// ServiceOffering is a service the business sells
type ServiceOffering struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	Icon               ServiceIcon    `json:"icon"`
	AssessmentTemplate []TemplateStep `json:"assessmentTemplate,omitempty"`
}
