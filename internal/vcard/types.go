package vcard

import "strings"

// Version is the vCard version every document declares.
const Version = "3.0"

// ContactFields holds the raw values collected from a contact form.
// Every text value is untrusted and is trimmed and escaped during Build.
type ContactFields struct {
	FirstName    string `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty" yaml:"lastName,omitempty"`
	DisplayName  string `json:"fullName,omitempty" yaml:"fullName,omitempty"`
	Organization string `json:"organization,omitempty" yaml:"organization,omitempty"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	PhoneMobile  string `json:"phoneMobile,omitempty" yaml:"phoneMobile,omitempty"`
	PhoneWork    string `json:"phoneWork,omitempty" yaml:"phoneWork,omitempty"`
	Email        string `json:"email,omitempty" yaml:"email,omitempty"`
	Website      string `json:"website,omitempty" yaml:"website,omitempty"`
	Street       string `json:"street,omitempty" yaml:"street,omitempty"`
	City         string `json:"city,omitempty" yaml:"city,omitempty"`
	Region       string `json:"region,omitempty" yaml:"region,omitempty"`
	PostalCode   string `json:"postalCode,omitempty" yaml:"postalCode,omitempty"`
	Country      string `json:"country,omitempty" yaml:"country,omitempty"`
	Note         string `json:"note,omitempty" yaml:"note,omitempty"`

	// PhotoDataURL is a data URL ("data:image/jpeg;base64,...") of the contact photo.
	PhotoDataURL string `json:"photoDataUrl,omitempty" yaml:"photoDataUrl,omitempty"`
	// IncludePhoto must be set for PhotoDataURL to be embedded.
	IncludePhoto bool `json:"includePhotoInVcf,omitempty" yaml:"includePhotoInVcf,omitempty"`
}

// HasName reports whether at least one of the name fields is non-blank.
func (f ContactFields) HasName() bool {
	return strings.TrimSpace(f.FirstName) != "" ||
		strings.TrimSpace(f.LastName) != "" ||
		strings.TrimSpace(f.DisplayName) != ""
}

// HasPhoto reports whether a photo payload is present, embedded or not.
func (f ContactFields) HasPhoto() bool {
	return f.PhotoDataURL != ""
}

// WithPhoto returns a copy of f carrying the given photo with embedding forced on.
func (f ContactFields) WithPhoto(dataURL string) ContactFields {
	f.PhotoDataURL = dataURL
	f.IncludePhoto = true
	return f
}

// WithoutPhoto returns a copy of f with no photo.
func (f ContactFields) WithoutPhoto() ContactFields {
	f.PhotoDataURL = ""
	f.IncludePhoto = false
	return f
}

// Document is a serialized vCard: one entry per physical line, without terminators.
type Document struct {
	Lines []string
}

// String joins the lines with CRLF. There is no trailing line break.
func (d Document) String() string {
	return strings.Join(d.Lines, "\r\n")
}

// Len returns the byte length of String, the figure checked against QR capacity.
func (d Document) Len() int {
	if len(d.Lines) == 0 {
		return 0
	}
	n := 2 * (len(d.Lines) - 1)
	for _, l := range d.Lines {
		n += len(l)
	}
	return n
}

// Bytes returns String as a byte slice.
func (d Document) Bytes() []byte {
	return []byte(d.String())
}
