package vcard

import (
	"regexp"
	"strings"
)

// Photo types emitted in the PHOTO property.
const (
	PhotoTypeJPEG = "JPEG"
	PhotoTypePNG  = "PNG"
)

var jpegMetaPattern = regexp.MustCompile(`(?i)image/jpeg`)

// Build serializes fields into a vCard 3.0 document. It never fails: with every
// optional field empty the result is BEGIN, VERSION, N, FN and END.
//
// Phone, email and website values are written without escaping; they are
// expected to be plain tokens and are checked by the validation package.
func Build(fields ContactFields) Document {
	firstName := strings.TrimSpace(fields.FirstName)
	lastName := strings.TrimSpace(fields.LastName)

	fullName := strings.TrimSpace(fields.DisplayName)
	if fullName == "" {
		fullName = joinNonEmpty(" ", firstName, lastName)
	}

	organization := strings.TrimSpace(fields.Organization)
	title := strings.TrimSpace(fields.Title)
	phoneMobile := strings.TrimSpace(fields.PhoneMobile)
	phoneWork := strings.TrimSpace(fields.PhoneWork)
	email := strings.TrimSpace(fields.Email)
	website := strings.TrimSpace(fields.Website)

	street := strings.TrimSpace(fields.Street)
	city := strings.TrimSpace(fields.City)
	region := strings.TrimSpace(fields.Region)
	postalCode := strings.TrimSpace(fields.PostalCode)
	country := strings.TrimSpace(fields.Country)

	note := strings.TrimSpace(fields.Note)

	lines := make([]string, 0, 16)
	lines = append(lines, "BEGIN:VCARD", "VERSION:"+Version)

	lines = append(lines, "N:"+strings.Join([]string{Escape(lastName), Escape(firstName), "", "", ""}, ";"))
	lines = append(lines, "FN:"+Escape(fullName))

	if organization != "" {
		lines = append(lines, "ORG:"+Escape(organization))
	}
	if title != "" {
		lines = append(lines, "TITLE:"+Escape(title))
	}

	if phoneMobile != "" {
		lines = append(lines, "TEL;TYPE=CELL:"+phoneMobile)
	}
	if phoneWork != "" {
		lines = append(lines, "TEL;TYPE=WORK,VOICE:"+phoneWork)
	}

	if email != "" {
		lines = append(lines, "EMAIL;TYPE=INTERNET:"+email)
	}
	if website != "" {
		lines = append(lines, "URL:"+website)
	}

	if street != "" || city != "" || region != "" || postalCode != "" || country != "" {
		adr := strings.Join([]string{
			"", "",
			Escape(street), Escape(city), Escape(region), Escape(postalCode), Escape(country),
		}, ";")
		lines = append(lines, "ADR;TYPE=WORK:"+adr)
	}

	if note != "" {
		lines = append(lines, "NOTE:"+Escape(note))
	}

	if fields.PhotoDataURL != "" && fields.IncludePhoto {
		lines = append(lines, FoldLine(PhotoLine(fields.PhotoDataURL))...)
	}

	lines = append(lines, "END:VCARD")
	return Document{Lines: lines}
}

// PhotoLine builds the unfolded PHOTO property for a data URL. The part after
// the first comma is taken as the base64 body; the part before it decides
// between JPEG and PNG.
func PhotoLine(dataURL string) string {
	meta, body, _ := strings.Cut(dataURL, ",")
	return "PHOTO;ENCODING=b;TYPE=" + PhotoType(meta) + ":" + body
}

// PhotoType classifies data URL metadata as JPEG or PNG.
func PhotoType(meta string) string {
	if jpegMetaPattern.MatchString(meta) {
		return PhotoTypeJPEG
	}
	return PhotoTypePNG
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
