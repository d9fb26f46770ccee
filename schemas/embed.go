// Package schemas holds the JSON Schemas for contact-qr input documents.
package schemas

import _ "embed"

// Contact is the schema for one contact object.
//
//go:embed contact.schema.json
var Contact string
