package microsite

// ButtonStyle controls the corner radius of link buttons on the landing page.
type ButtonStyle string

const (
	ButtonRounded ButtonStyle = "rounded"
	ButtonSquare  ButtonStyle = "square"
	ButtonPill    ButtonStyle = "pill"
)

// LinkType selects how a link entry is presented.
type LinkType string

const (
	LinkTypeLink    LinkType = "link"
	LinkTypeFile    LinkType = "file"
	LinkTypeImage   LinkType = "image"
	LinkTypeVideo   LinkType = "video"
	LinkTypeProduct LinkType = "product"
)

// Icon names understood by the viewer.
const (
	IconLink        = "link"
	IconInstagram   = "instagram"
	IconTwitter     = "twitter"
	IconFacebook    = "facebook"
	IconYouTube     = "youtube"
	IconGitHub      = "github"
	IconLinkedIn    = "linkedin"
	IconMail        = "mail"
	IconPhone       = "phone"
	IconFile        = "file"
	IconImage       = "image"
	IconVideo       = "video"
	IconDownload    = "download"
	IconShoppingBag = "shopping-bag"
)

// Icons lists the icon vocabulary in picker order.
func Icons() []string {
	return []string{
		IconLink, IconInstagram, IconTwitter, IconFacebook, IconYouTube,
		IconGitHub, IconLinkedIn, IconMail, IconPhone, IconFile, IconImage,
		IconVideo, IconDownload, IconShoppingBag,
	}
}

// Link is one entry on a microsite. Product fields are only meaningful
// when Type is LinkTypeProduct.
type Link struct {
	ID       string   `json:"id"`
	Type     LinkType `json:"type" binding:"omitempty,oneof=link file image video product"`
	Label    string   `json:"label" binding:"max=200"`
	URL      string   `json:"url" binding:"max=2048"`
	Icon     string   `json:"icon,omitempty" binding:"omitempty,oneof=link instagram twitter facebook youtube github linkedin mail phone file image video download shopping-bag"`
	SubLabel string   `json:"subLabel,omitempty" binding:"max=300"`
	Price    string   `json:"price,omitempty" binding:"max=32"`
	Currency string   `json:"currency,omitempty" binding:"max=8"`
	ImageURL string   `json:"imageUrl,omitempty" binding:"max=2048"`
}

// Config is the full state of a microsite. It is the unit that travels in
// a share token, so the JSON keys are part of the wire format.
type Config struct {
	Title       string      `json:"title" binding:"max=200"`
	Description string      `json:"description" binding:"max=2000"`
	ImageURL    string      `json:"imageUrl" binding:"max=2048"`
	ThemeColor  string      `json:"themeColor" binding:"hexcolor_or_empty"`
	ButtonStyle ButtonStyle `json:"buttonStyle" binding:"omitempty,oneof=rounded square pill"`
	Links       []Link      `json:"links" binding:"dive"`
}

// DefaultConfig is the state a new microsite starts from.
func DefaultConfig() Config {
	return Config{
		Title:       "My Microshop",
		Description: "Check out my favorite products!",
		ThemeColor:  "#4f46e5",
		ButtonStyle: ButtonRounded,
		Links:       []Link{},
	}
}

// NewLink returns the placeholder entry for a plain link.
func NewLink(id string) Link {
	return Link{ID: id, Type: LinkTypeLink, Label: "New Link", Icon: IconLink}
}

// NewProductLink returns the placeholder product entry the builder inserts.
func NewProductLink(id string) Link {
	return Link{
		ID:       id,
		Type:     LinkTypeProduct,
		Label:    "Product Name",
		SubLabel: "Description...",
		Price:    "9.99",
		Currency: "$",
		Icon:     IconShoppingBag,
	}
}

// DefaultIcon picks the icon for a link type when none was chosen.
func DefaultIcon(t LinkType) string {
	switch t {
	case LinkTypeFile:
		return IconDownload
	case LinkTypeImage:
		return IconImage
	case LinkTypeVideo:
		return IconVideo
	case LinkTypeProduct:
		return IconShoppingBag
	default:
		return IconLink
	}
}

// Clone returns a deep copy so callers can mutate without aliasing links.
func (c Config) Clone() Config {
	out := c
	if c.Links != nil {
		out.Links = make([]Link, len(c.Links))
		copy(out.Links, c.Links)
	}
	return out
}
