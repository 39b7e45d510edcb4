package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Multipart is a multipart/form-data request body. Fields and files are
// written in the order they were added.
type Multipart struct {
	parts []formPart
}

type formPart struct {
	name        string
	value       string
	filename    string
	contentType string
	data        []byte
	isFile      bool
}

// NewMultipart returns an empty form.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// Field appends a text field.
func (m *Multipart) Field(name, value string) *Multipart {
	m.parts = append(m.parts, formPart{name: name, value: value})
	return m
}

// File appends a file part. An empty contentType defaults to
// application/octet-stream.
func (m *Multipart) File(name, filename, contentType string, data []byte) *Multipart {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	m.parts = append(m.parts, formPart{
		name:        name,
		filename:    filename,
		contentType: contentType,
		data:        data,
		isFile:      true,
	})
	return m
}

// Value returns the first text field with the given name.
func (m *Multipart) Value(name string) (string, bool) {
	for _, p := range m.parts {
		if p.name == name && !p.isFile {
			return p.value, true
		}
	}
	return "", false
}

// HasFile reports whether a file part with the given name was added.
func (m *Multipart) HasFile(name string) bool {
	for _, p := range m.parts {
		if p.name == name && p.isFile {
			return true
		}
	}
	return false
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range m.parts {
		if !p.isFile {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", p.name, err)
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(p.name), quoteEscaper.Replace(p.filename)))
		h.Set("Content-Type", p.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", p.name, err)
		}
		if _, err := part.Write(p.data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", p.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
