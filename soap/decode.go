package soap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/s0up4200/jnetcce/cce"
)

// ErrNotEnvelope is returned when a reply is XML but not a SOAP envelope
var ErrNotEnvelope = errors.New("reply is not a SOAP envelope")

type frame struct {
	name     string
	node     cce.Node
	text     strings.Builder
	hasChild bool
}

// Decode converts an XML document into a tree keyed by local element names.
// Namespaces and attributes are dropped, repeated siblings become []any and
// elements without children become their trimmed text.
func Decode(r io.Reader) (cce.Node, error) {
	dec := xml.NewDecoder(r)
	root := &frame{node: cce.Node{}}
	stack := []*frame{root}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack[len(stack)-1].hasChild = true
			stack = append(stack, &frame{name: t.Name.Local, node: cce.Node{}})
		case xml.CharData:
			stack[len(stack)-1].text.Write(t)
		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			var value any = strings.TrimSpace(f.text.String())
			if f.hasChild {
				value = f.node
			}
			appendChild(stack[len(stack)-1].node, f.name, value)
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("failed to decode xml: %w", io.ErrUnexpectedEOF)
	}
	return root.node, nil
}

func appendChild(n cce.Node, name string, value any) {
	existing, ok := n[name]
	if !ok {
		n[name] = value
		return
	}
	if list, ok := existing.([]any); ok {
		n[name] = append(list, value)
		return
	}
	n[name] = []any{existing, value}
}

// DecodeEnvelope decodes a SOAP reply and returns the content of its Body.
func DecodeEnvelope(r io.Reader) (cce.Node, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	body, ok := doc.Path("Envelope", "Body")
	if !ok {
		return nil, ErrNotEnvelope
	}
	return body, nil
}
