package icd10

import (
	"encoding/xml"
	"io"
)

// Parser extracts diagnosis code/description pairs from an ICD-10 tabular
// XML document. It walks the token stream once, locating every diag
// element regardless of nesting depth (the CMS schema nests diag within
// diag), and reads the mandatory name and desc children of each. Only
// direct children count: chapters and sections carry desc elements of
// their own that are not diagnosis records.
//
// Records are produced lazily in document order of the diag start tags.
// The underlying reader is consumed once; the parser is not restartable.
type Parser struct {
	dec   *xml.Decoder
	stack []string
	open  []*diagFrame
	queue []Diagnosis
}

type diagFrame struct {
	offset  int64
	name    *string
	desc    *string
	emitted bool
}

// NewParser creates a Parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{dec: xml.NewDecoder(r)}
}

// Next returns the next diagnosis record, or io.EOF when the document is
// exhausted. Malformed XML yields a *ParseError; a diag element missing
// its name or desc child yields a *MalformedRecordError. After any error
// other than io.EOF the parser must not be used again.
func (p *Parser) Next() (*Diagnosis, error) {
	for {
		if len(p.queue) > 0 {
			d := p.queue[0]
			p.queue = p.queue[1:]
			return &d, nil
		}

		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.stack = append(p.stack, t.Name.Local)
			switch t.Name.Local {
			case "diag":
				p.open = append(p.open, &diagFrame{offset: p.dec.InputOffset()})
			case "name", "desc":
				if len(p.open) > 0 && len(p.stack) >= 2 && p.stack[len(p.stack)-2] == "diag" {
					text, err := p.readText()
					if err != nil {
						return nil, err
					}
					// readText consumed the matching end element
					p.stack = p.stack[:len(p.stack)-1]
					p.capture(t.Name.Local, text)
				}
			}
		case xml.EndElement:
			p.stack = p.stack[:len(p.stack)-1]
			if t.Name.Local == "diag" {
				frame := p.open[len(p.open)-1]
				p.open = p.open[:len(p.open)-1]
				if !frame.emitted {
					missing := "name"
					if frame.name != nil {
						missing = "desc"
					}
					return nil, &MalformedRecordError{Offset: frame.offset, Missing: missing}
				}
			}
		}
	}
}

// capture assigns text to the innermost open diag frame and queues the
// record once both children have been seen. A diag's name and desc
// precede any nested diag in the schema, so queueing here preserves the
// document order of the diag start tags.
func (p *Parser) capture(local, text string) {
	frame := p.open[len(p.open)-1]
	switch local {
	case "name":
		if frame.name == nil {
			frame.name = &text
		}
	case "desc":
		if frame.desc == nil {
			frame.desc = &text
		}
	}
	if !frame.emitted && frame.name != nil && frame.desc != nil {
		frame.emitted = true
		p.queue = append(p.queue, Diagnosis{Code: *frame.name, Description: *frame.desc})
	}
}

// readText accumulates character data until the current element closes.
func (p *Parser) readText() (string, error) {
	var text []byte
	depth := 0
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return "", &ParseError{Err: err}
		}
		switch t := tok.(type) {
		case xml.CharData:
			if depth == 0 {
				text = append(text, t...)
			}
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return string(text), nil
			}
			depth--
		}
	}
}
