// Package qr encodes and decodes the payload carried inside scanned
// QR codes. Three payload shapes exist in the wild: a JSON document
// (current badges), a labeled multi-line text block (legacy badges,
// Spanish or English labels), and a bare identifier string. Decoding
// tries them in that order.
package qr

import (
	"encoding/json"
	"strings"

	"github.com/eventops/qr-checkin-api/internal/domain"
)

// Payload holds the structured fields a QR code can carry. Only the
// identifier (Code or Email) is required to resolve an attendee;
// everything else is display data.
type Payload struct {
	Code      string   `json:"code,omitempty"`
	Email     string   `json:"email,omitempty"`
	Name      string   `json:"name,omitempty"`
	Country   string   `json:"country,omitempty"`
	OrgType   string   `json:"org_type,omitempty"`
	MainEvent string   `json:"main_event,omitempty"`
	Events    []string `json:"events,omitempty"`
}

// PayloadFromAttendee builds the canonical payload for an attendee
// snapshot. The same snapshot always yields the same payload, so badge
// generators can cache the rendered image keyed on the encoded string.
func PayloadFromAttendee(a *domain.Attendee) Payload {
	return Payload{
		Code:    a.QRCode,
		Email:   a.Email,
		Name:    a.FullName,
		Country: a.Country,
		OrgType: a.OrgType,
	}
}

// Identifier returns the attendee key for this payload: the opaque
// code when present, the email otherwise.
func (p Payload) Identifier() string {
	if p.Code != "" {
		return p.Code
	}
	return p.Email
}

// labeled-line field labels, lowercased. Legacy badges were printed
// with Spanish labels; newer readers also emit English ones.
var lineLabels = map[string]func(*Payload, string){
	"código":               func(p *Payload, v string) { p.Code = v },
	"codigo":               func(p *Payload, v string) { p.Code = v },
	"code":                 func(p *Payload, v string) { p.Code = v },
	"correo":               func(p *Payload, v string) { p.Email = v },
	"email":                func(p *Payload, v string) { p.Email = v },
	"nombre":               func(p *Payload, v string) { p.Name = v },
	"name":                 func(p *Payload, v string) { p.Name = v },
	"país":                 func(p *Payload, v string) { p.Country = v },
	"pais":                 func(p *Payload, v string) { p.Country = v },
	"country":              func(p *Payload, v string) { p.Country = v },
	"tipo de organización": func(p *Payload, v string) { p.OrgType = v },
	"tipo de organizacion": func(p *Payload, v string) { p.OrgType = v },
	"organization type":    func(p *Payload, v string) { p.OrgType = v },
	"evento a participar":  func(p *Payload, v string) { p.MainEvent = v },
	"main event":           func(p *Payload, v string) { p.MainEvent = v },
	"participa en":         func(p *Payload, v string) { p.Events = splitEvents(v) },
	"events":               func(p *Payload, v string) { p.Events = splitEvents(v) },
}

// Encode produces the canonical string embedded in a generated QR
// code. The output is a JSON document with a fixed field order, so
// the same attendee snapshot always yields the same bytes (the
// rendered image is cached on that property).
func Encode(p Payload) string {
	raw, err := json.Marshal(p)
	if err != nil {
		// Payload contains only strings and slices; Marshal cannot fail.
		return ""
	}
	return string(raw)
}

// Decode extracts a payload from raw scanner input. Dispatch is by
// shape: JSON object, then labeled lines, then bare identifier.
// Missing fields yield empty values; the only failure is a payload
// with no usable attendee key at all.
func Decode(raw string) (Payload, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Payload{}, domain.ErrDecode
	}

	if strings.HasPrefix(trimmed, "{") {
		var p Payload
		if err := json.Unmarshal([]byte(trimmed), &p); err == nil {
			if p.Identifier() == "" {
				return Payload{}, domain.ErrDecode
			}
			return p, nil
		}
		// malformed JSON falls through to the text formats
	}

	if strings.ContainsAny(trimmed, "\n") || strings.Contains(trimmed, ":") {
		p, matched := decodeLabeledLines(trimmed)
		if matched {
			if p.Identifier() == "" {
				return Payload{}, domain.ErrDecode
			}
			return p, nil
		}
	}

	return decodeBareIdentifier(trimmed)
}

// decodeLabeledLines parses the legacy multi-line block. Line order
// is free and unknown lines (banners, separators) are skipped.
func decodeLabeledLines(raw string) (Payload, bool) {
	var p Payload
	matched := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		assign, known := lineLabels[strings.ToLower(strings.TrimSpace(label))]
		if !known {
			continue
		}
		assign(&p, strings.TrimSpace(value))
		matched = true
	}
	return p, matched
}

// decodeBareIdentifier treats the whole payload as a single key: an
// email when it looks like one, an opaque code otherwise. Multi-line
// input that reached this point had no recognizable labels and is
// not a usable identifier.
func decodeBareIdentifier(trimmed string) (Payload, error) {
	if strings.ContainsAny(trimmed, "\n\t") || strings.Contains(trimmed, " ") {
		return Payload{}, domain.ErrDecode
	}
	if strings.Contains(trimmed, "@") {
		return Payload{Email: trimmed}, nil
	}
	return Payload{Code: trimmed}, nil
}

func splitEvents(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	events := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			events = append(events, trimmed)
		}
	}
	if len(events) == 0 {
		return nil
	}
	return events
}
