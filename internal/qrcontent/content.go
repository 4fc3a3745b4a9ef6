package qrcontent

// Content is one variant of the kind-tagged content union. Each variant
// carries only the fields its kind reads.
type Content interface {
	Kind() Kind
	isContent()
}

type URL struct{ URL string }

type Text struct{ Text string }

type Email struct {
	Email   string
	Subject string
	Body    string
}

type Phone struct{ Phone string }

type SMS struct {
	Phone   string
	Message string
}

type WhatsApp struct {
	Phone   string
	Message string
}

type WiFi struct {
	SSID       string
	Password   string
	Encryption string
}

type VCard struct {
	FirstName string
	LastName  string
	Org       string
	Phone     string
	Email     string
	URL       string
}

type Location struct {
	Lat string
	Lng string
}

type Event struct {
	Title    string
	Location string
	Start    string
	End      string
}

type Crypto struct {
	Coin    string
	Address string
	Amount  string
}

type PayPal struct {
	Username string
	Amount   string
}

// Social covers the profile link kinds (instagram, facebook, twitter).
type Social struct {
	Network  Kind
	Username string
}

type YouTube struct{ URL string }

type Image struct{ URL string }

type File struct{ URL string }

// Microsite is a placeholder variant; its payload is produced by the microsite codec.
type Microsite struct{}

func (URL) Kind() Kind       { return KindURL }
func (Text) Kind() Kind      { return KindText }
func (Email) Kind() Kind     { return KindEmail }
func (Phone) Kind() Kind     { return KindPhone }
func (SMS) Kind() Kind       { return KindSMS }
func (WhatsApp) Kind() Kind  { return KindWhatsApp }
func (WiFi) Kind() Kind      { return KindWiFi }
func (VCard) Kind() Kind     { return KindVCard }
func (Location) Kind() Kind  { return KindLocation }
func (Event) Kind() Kind     { return KindEvent }
func (Crypto) Kind() Kind    { return KindCrypto }
func (PayPal) Kind() Kind    { return KindPayPal }
func (s Social) Kind() Kind  { return s.Network }
func (YouTube) Kind() Kind   { return KindYouTube }
func (Image) Kind() Kind     { return KindImage }
func (File) Kind() Kind      { return KindFile }
func (Microsite) Kind() Kind { return KindMicrosite }

func (URL) isContent()       {}
func (Text) isContent()      {}
func (Email) isContent()     {}
func (Phone) isContent()     {}
func (SMS) isContent()       {}
func (WhatsApp) isContent()  {}
func (WiFi) isContent()      {}
func (VCard) isContent()     {}
func (Location) isContent()  {}
func (Event) isContent()     {}
func (Crypto) isContent()    {}
func (PayPal) isContent()    {}
func (Social) isContent()    {}
func (YouTube) isContent()   {}
func (Image) isContent()     {}
func (File) isContent()      {}
func (Microsite) isContent() {}

// FromFields builds the variant for kind from a flat field map. Keys that the
// kind does not own are ignored. ok is false for unknown kinds.
func FromFields(kind Kind, fields map[string]string) (Content, bool) {
	get := func(name string) string {
		if fields == nil {
			return ""
		}
		return fields[name]
	}

	switch kind {
	case KindURL:
		return URL{URL: get(FieldURL)}, true
	case KindText:
		return Text{Text: get(FieldText)}, true
	case KindEmail:
		return Email{Email: get(FieldEmail), Subject: get(FieldSubject), Body: get(FieldBody)}, true
	case KindPhone:
		return Phone{Phone: get(FieldPhone)}, true
	case KindSMS:
		return SMS{Phone: get(FieldPhone), Message: get(FieldMessage)}, true
	case KindWhatsApp:
		return WhatsApp{Phone: get(FieldPhone), Message: get(FieldMessage)}, true
	case KindWiFi:
		return WiFi{SSID: get(FieldSSID), Password: get(FieldPassword), Encryption: get(FieldEncryption)}, true
	case KindVCard:
		return VCard{
			FirstName: get(FieldFirstName),
			LastName:  get(FieldLastName),
			Org:       get(FieldOrg),
			Phone:     get(FieldPhone),
			Email:     get(FieldEmail),
			URL:       get(FieldURL),
		}, true
	case KindLocation:
		return Location{Lat: get(FieldLat), Lng: get(FieldLng)}, true
	case KindEvent:
		return Event{Title: get(FieldTitle), Location: get(FieldLocation), Start: get(FieldStart), End: get(FieldEnd)}, true
	case KindCrypto:
		return Crypto{Coin: get(FieldCoin), Address: get(FieldAddress), Amount: get(FieldAmount)}, true
	case KindPayPal:
		return PayPal{Username: get(FieldUsername), Amount: get(FieldAmount)}, true
	case KindInstagram, KindFacebook, KindTwitter:
		return Social{Network: kind, Username: get(FieldUsername)}, true
	case KindYouTube:
		return YouTube{URL: get(FieldURL)}, true
	case KindImage:
		return Image{URL: get(FieldURL)}, true
	case KindFile:
		return File{URL: get(FieldURL)}, true
	case KindMicrosite:
		return Microsite{}, true
	}
	return nil, false
}
