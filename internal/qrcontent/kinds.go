package qrcontent

import "strings"

// Kind identifies which payload format a QR code carries.
type Kind string

const (
	KindURL       Kind = "url"
	KindText      Kind = "text"
	KindEmail     Kind = "email"
	KindPhone     Kind = "phone"
	KindSMS       Kind = "sms"
	KindWiFi      Kind = "wifi"
	KindVCard     Kind = "vcard"
	KindLocation  Kind = "location"
	KindEvent     Kind = "event"
	KindCrypto    Kind = "crypto"
	KindWhatsApp  Kind = "whatsapp"
	KindPayPal    Kind = "paypal"
	KindInstagram Kind = "instagram"
	KindFacebook  Kind = "facebook"
	KindTwitter   Kind = "twitter"
	KindYouTube   Kind = "youtube"
	KindImage     Kind = "image"
	KindFile      Kind = "file"
	KindMicrosite Kind = "microsite"
)

// Field names shared by the map based API.
const (
	FieldURL        = "url"
	FieldText       = "text"
	FieldEmail      = "email"
	FieldSubject    = "subject"
	FieldBody       = "body"
	FieldPhone      = "phone"
	FieldMessage    = "message"
	FieldSSID       = "ssid"
	FieldPassword   = "password"
	FieldEncryption = "encryption"
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldOrg        = "org"
	FieldLat        = "lat"
	FieldLng        = "lng"
	FieldTitle      = "title"
	FieldLocation   = "location"
	FieldStart      = "start"
	FieldEnd        = "end"
	FieldCoin       = "coin"
	FieldAddress    = "address"
	FieldAmount     = "amount"
	FieldUsername   = "username"
)

var allKinds = []Kind{
	KindURL, KindText, KindEmail, KindPhone, KindSMS, KindWiFi, KindVCard,
	KindLocation, KindEvent, KindCrypto, KindWhatsApp, KindPayPal,
	KindInstagram, KindFacebook, KindTwitter, KindYouTube, KindImage,
	KindFile, KindMicrosite,
}

// AllKinds returns every supported kind in catalogue order.
func AllKinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind normalises s and reports whether it names a supported kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allKinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

func (k Kind) Valid() bool {
	_, ok := ParseKind(string(k))
	return ok
}

// FieldSpec describes one input of a kind for form builders.
type FieldSpec struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Placeholder string   `json:"placeholder,omitempty"`
	Default     string   `json:"default,omitempty"`
	Options     []string `json:"options,omitempty"`
}

// KindSpec describes a kind and the fields it reads.
type KindSpec struct {
	Kind   Kind        `json:"kind"`
	Label  string      `json:"label"`
	Fields []FieldSpec `json:"fields"`
}

// Catalog returns the field layout of every kind.
func Catalog() []KindSpec {
	return []KindSpec{
		{Kind: KindURL, Label: "URL", Fields: []FieldSpec{
			{Name: FieldURL, Label: "Website URL", Type: "url", Placeholder: "https://example.com", Default: "https://example.com"},
		}},
		{Kind: KindText, Label: "Text", Fields: []FieldSpec{
			{Name: FieldText, Label: "Plain Text", Type: "textarea", Placeholder: "Enter your text here...", Default: "Hello World"},
		}},
		{Kind: KindEmail, Label: "Email", Fields: []FieldSpec{
			{Name: FieldEmail, Label: "Email Address", Type: "email"},
			{Name: FieldSubject, Label: "Subject", Type: "text"},
			{Name: FieldBody, Label: "Message", Type: "textarea"},
		}},
		{Kind: KindPhone, Label: "Phone", Fields: []FieldSpec{
			{Name: FieldPhone, Label: "Phone Number", Type: "tel", Placeholder: "+1 234 567 8900"},
		}},
		{Kind: KindSMS, Label: "SMS", Fields: []FieldSpec{
			{Name: FieldPhone, Label: "Phone Number", Type: "tel"},
			{Name: FieldMessage, Label: "Message", Type: "textarea"},
		}},
		{Kind: KindWiFi, Label: "WiFi", Fields: []FieldSpec{
			{Name: FieldSSID, Label: "Network Name (SSID)", Type: "text"},
			{Name: FieldPassword, Label: "Password", Type: "password"},
			{Name: FieldEncryption, Label: "Encryption", Type: "select", Default: "WPA", Options: []string{"WPA", "WEP", "nopass"}},
		}},
		{Kind: KindVCard, Label: "vCard", Fields: []FieldSpec{
			{Name: FieldFirstName, Label: "First Name", Type: "text"},
			{Name: FieldLastName, Label: "Last Name", Type: "text"},
			{Name: FieldOrg, Label: "Organization", Type: "text"},
			{Name: FieldPhone, Label: "Phone", Type: "tel"},
			{Name: FieldEmail, Label: "Email", Type: "email"},
			{Name: FieldURL, Label: "Website", Type: "url"},
		}},
		{Kind: KindLocation, Label: "Location", Fields: []FieldSpec{
			{Name: FieldLat, Label: "Latitude", Type: "number"},
			{Name: FieldLng, Label: "Longitude", Type: "number"},
		}},
		{Kind: KindEvent, Label: "Event", Fields: []FieldSpec{
			{Name: FieldTitle, Label: "Event Title", Type: "text"},
			{Name: FieldLocation, Label: "Location", Type: "text"},
			{Name: FieldStart, Label: "Start", Type: "datetime-local"},
			{Name: FieldEnd, Label: "End", Type: "datetime-local"},
		}},
		{Kind: KindCrypto, Label: "Crypto", Fields: []FieldSpec{
			{Name: FieldCoin, Label: "Currency", Type: "select", Default: "bitcoin", Options: []string{"bitcoin", "ethereum", "litecoin"}},
			{Name: FieldAddress, Label: "Wallet Address", Type: "text"},
			{Name: FieldAmount, Label: "Amount", Type: "number"},
		}},
		{Kind: KindWhatsApp, Label: "WhatsApp", Fields: []FieldSpec{
			{Name: FieldPhone, Label: "Phone Number", Type: "tel"},
			{Name: FieldMessage, Label: "Message", Type: "textarea"},
		}},
		{Kind: KindPayPal, Label: "PayPal", Fields: []FieldSpec{
			{Name: FieldUsername, Label: "PayPal.me Username", Type: "text"},
			{Name: FieldAmount, Label: "Amount", Type: "number"},
		}},
		{Kind: KindInstagram, Label: "Instagram", Fields: []FieldSpec{
			{Name: FieldUsername, Label: "Username", Type: "text", Placeholder: "@username"},
		}},
		{Kind: KindFacebook, Label: "Facebook", Fields: []FieldSpec{
			{Name: FieldUsername, Label: "Page or Username", Type: "text"},
		}},
		{Kind: KindTwitter, Label: "X / Twitter", Fields: []FieldSpec{
			{Name: FieldUsername, Label: "Username", Type: "text", Placeholder: "@username"},
		}},
		{Kind: KindYouTube, Label: "YouTube", Fields: []FieldSpec{
			{Name: FieldURL, Label: "Video or Channel URL", Type: "url", Placeholder: "https://youtube.com"},
		}},
		{Kind: KindImage, Label: "Image", Fields: []FieldSpec{
			{Name: FieldURL, Label: "Image URL", Type: "url"},
		}},
		{Kind: KindFile, Label: "File", Fields: []FieldSpec{
			{Name: FieldURL, Label: "File URL", Type: "url"},
		}},
		{Kind: KindMicrosite, Label: "Microsite", Fields: []FieldSpec{}},
	}
}

// DefaultFields returns the initial field values a fresh form starts with.
func DefaultFields(kind Kind) map[string]string {
	out := map[string]string{}
	for _, spec := range Catalog() {
		if spec.Kind != kind {
			continue
		}
		for _, f := range spec.Fields {
			out[f.Name] = f.Default
		}
	}
	return out
}
