package qrcontent

import (
	"strings"
)

// Options tunes payload generation. The zero value reproduces the formats
// common scanner apps expect byte for byte.
type Options struct {
	// StrictEscaping backslash-escapes delimiter characters inside WIFI,
	// VCARD and VEVENT values.
	StrictEscaping bool
}

// Encode maps a kind and a flat field snapshot to the QR payload. It never
// fails: unknown kinds and the microsite kind produce an empty string, and
// missing fields become empty segments.
func Encode(kind Kind, fields map[string]string) string {
	return EncodeWith(kind, fields, Options{})
}

// EncodeWith is Encode with explicit options.
func EncodeWith(kind Kind, fields map[string]string, opts Options) string {
	content, ok := FromFields(kind, fields)
	if !ok {
		return ""
	}
	return Payload(content, opts)
}

// Payload renders a typed content value.
func Payload(content Content, opts Options) string {
	switch c := content.(type) {
	case URL:
		return c.URL
	case Text:
		return c.Text
	case Image:
		if c.URL == "" {
			return "https://"
		}
		return c.URL
	case File:
		return c.URL
	case Email:
		return "mailto:" + c.Email +
			"?subject=" + encodeURIComponent(c.Subject) +
			"&body=" + encodeURIComponent(c.Body)
	case Phone:
		return "tel:" + c.Phone
	case SMS:
		return "SMSTO:" + c.Phone + ":" + c.Message
	case WhatsApp:
		out := "https://wa.me/" + digitsOnly(c.Phone)
		if c.Message != "" {
			out += "?text=" + encodeURIComponent(c.Message)
		}
		return out
	case WiFi:
		esc := identity
		if opts.StrictEscaping {
			esc = escapeWiFi
		}
		return "WIFI:T:" + esc(c.Encryption) + ";S:" + esc(c.SSID) + ";P:" + esc(c.Password) + ";;"
	case Location:
		return "geo:" + c.Lat + "," + c.Lng
	case Crypto:
		return c.Coin + ":" + c.Address + "?amount=" + c.Amount
	case PayPal:
		out := "https://paypal.me/" + c.Username
		if c.Amount != "" {
			out += "/" + c.Amount
		}
		return out
	case Social:
		switch c.Network {
		case KindInstagram:
			return "https://instagram.com/" + strings.TrimPrefix(c.Username, "@")
		case KindTwitter:
			return "https://x.com/" + strings.TrimPrefix(c.Username, "@")
		case KindFacebook:
			return "https://facebook.com/" + c.Username
		}
		return ""
	case YouTube:
		if c.URL == "" {
			return "https://youtube.com"
		}
		return c.URL
	case VCard:
		return vcard(c, opts)
	case Event:
		return vevent(c, opts)
	case Microsite:
		return ""
	}
	return ""
}

func vcard(c VCard, opts Options) string {
	esc := identity
	if opts.StrictEscaping {
		esc = escapeText
	}
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"N:" + esc(c.LastName) + ";" + esc(c.FirstName),
		"FN:" + esc(c.FirstName) + " " + esc(c.LastName),
		"ORG:" + esc(c.Org),
		"TEL:" + c.Phone,
		"EMAIL:" + c.Email,
		"URL:" + c.URL,
		"END:VCARD",
	}
	return strings.Join(lines, "\n")
}

var timestampStripper = strings.NewReplacer("-", "", ":", "")

func vevent(c Event, opts Options) string {
	esc := identity
	if opts.StrictEscaping {
		esc = escapeText
	}
	lines := []string{
		"BEGIN:VEVENT",
		"SUMMARY:" + esc(c.Title),
		"LOCATION:" + esc(c.Location),
		"DTSTART:" + timestampStripper.Replace(c.Start),
		"DTEND:" + timestampStripper.Replace(c.End),
		"END:VEVENT",
	}
	return strings.Join(lines, "\n")
}
