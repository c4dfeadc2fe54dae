package soap

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/s0up4200/jnetcce/cce"
)

// Fault strings JNET uses for rejected credentials
const (
	faultAuthentication = "Authentication_Error"
	faultValidation     = "Validation_Error"
)

// Fault is a SOAP fault extracted from an error reply
type Fault struct {
	Code   string
	String string
	Detail string
}

// parseFault reads a SOAP 1.1 or 1.2 fault from a decoded body.
func parseFault(body cce.Node) (Fault, bool) {
	node, ok := body.Child("Fault")
	if !ok {
		return Fault{}, false
	}

	var f Fault
	if s, ok := node.Text("faultstring"); ok {
		f.String = s
		f.Code, _ = node.Text("faultcode")
	} else if reason, ok := node.Child("Reason"); ok {
		f.String, _ = reason.Text("Text")
		if code, ok := node.Child("Code"); ok {
			f.Code, _ = code.Text("Value")
		}
	} else {
		f.String, _ = node.Text("Reason")
	}

	detail, ok := node.Child("detail")
	if !ok {
		detail, ok = node.Child("Detail")
	}
	if ok {
		f.Detail = firstText(detail)
	}
	return f, true
}

// firstText returns the first non-empty text found depth first.
func firstText(n cce.Node) string {
	for _, v := range n {
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case cce.Node:
			if s := firstText(t); s != "" {
				return s
			}
		}
	}
	return ""
}

// newHTTPError turns a non-2xx reply into a *cce.Error. Credential faults on
// a 500 reply become KindAuthentication; everything else is KindTransport.
func newHTTPError(resp *http.Response, body []byte) *cce.Error {
	e := &cce.Error{
		Kind:     cce.KindTransport,
		Message:  fmt.Sprintf("JNET request failed with status %d", resp.StatusCode),
		RawData:  string(body),
		Response: resp,
	}

	decoded, err := DecodeEnvelope(bytes.NewReader(body))
	if err != nil {
		return e
	}
	e.RawData = decoded

	fault, ok := parseFault(decoded)
	if !ok {
		return e
	}

	switch {
	case resp.StatusCode == http.StatusInternalServerError && fault.String == faultAuthentication:
		e.Kind = cce.KindAuthentication
		e.Message = "received Authentication_Error from JNET, which usually is an issue with the client certificate or key"
	case resp.StatusCode == http.StatusInternalServerError && fault.String == faultValidation:
		e.Kind = cce.KindAuthentication
		e.Message = "received Validation_Error from JNET, which usually is an issue with the user id in RequestMetadata"
	default:
		e.Message = fmt.Sprintf("%s: %s", e.Message, strings.TrimSpace(fault.String))
	}
	if fault.Detail != "" {
		e.Message = fmt.Sprintf("%s (%s)", e.Message, fault.Detail)
	}
	return e
}
