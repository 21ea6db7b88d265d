package aadhaar

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// IdentityRecord holds the attributes of the root element of an Aadhaar QR
// XML payload. Attributes missing from the payload are left empty.
type IdentityRecord struct {
	UID    string `json:"uid,omitempty"`
	Name   string `json:"name,omitempty"`
	Gender string `json:"gender,omitempty"`
	DOB    string `json:"dob,omitempty"`
	GName  string `json:"gname,omitempty"`
	House  string `json:"house,omitempty"`
	Street string `json:"street,omitempty"`
	LM     string `json:"lm,omitempty"`
	VTC    string `json:"vtc,omitempty"`
	PO     string `json:"po,omitempty"`
	Dist   string `json:"dist,omitempty"`
	State  string `json:"state,omitempty"`
	PC     string `json:"pc,omitempty"`
}

// XMLParseOutcome is either a parsed record (OK) or the untouched payload.
type XMLParseOutcome struct {
	OK     bool
	Record IdentityRecord
	Raw    string
}

var errNoRootElement = errors.New("xml payload has no root element")

// ParseIdentityXML interprets a decoded QR payload as Aadhaar XML. It never
// fails: any parse error yields an outcome with OK unset and Raw holding the
// payload verbatim.
func ParseIdentityXML(payload string) XMLParseOutcome {
	record, err := parseIdentityXML(payload)
	if err != nil {
		return XMLParseOutcome{Raw: payload}
	}
	return XMLParseOutcome{OK: true, Record: record}
}

func parseIdentityXML(payload string) (IdentityRecord, error) {
	dec := xml.NewDecoder(strings.NewReader(payload))

	var (
		record IdentityRecord
		seen   bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return IdentityRecord{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if seen {
				return IdentityRecord{}, errors.New("xml payload has more than one root element")
			}
			seen = true
			record = recordFromAttrs(t.Attr)
			if err := dec.Skip(); err != nil {
				return IdentityRecord{}, err
			}
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) > 0 {
				return IdentityRecord{}, errors.New("xml payload has text outside the root element")
			}
		case xml.ProcInst, xml.Comment, xml.Directive:
		}
	}
	if !seen {
		return IdentityRecord{}, errNoRootElement
	}
	return record, nil
}

func recordFromAttrs(attrs []xml.Attr) IdentityRecord {
	var r IdentityRecord
	fields := map[string]*string{
		"uid":    &r.UID,
		"name":   &r.Name,
		"gender": &r.Gender,
		"dob":    &r.DOB,
		"gname":  &r.GName,
		"house":  &r.House,
		"street": &r.Street,
		"lm":     &r.LM,
		"vtc":    &r.VTC,
		"po":     &r.PO,
		"dist":   &r.Dist,
		"state":  &r.State,
		"pc":     &r.PC,
	}
	for _, attr := range attrs {
		// Namespaced attributes are not part of the record.
		if attr.Name.Space != "" {
			continue
		}
		if dst, ok := fields[attr.Name.Local]; ok {
			*dst = attr.Value
		}
	}
	return r
}
