// Package soap implements cce.Transport over the JNET SOAP 1.2 endpoint.
//
// Requests are built from namespaced structs and sent with the client
// certificate JNET issued. Replies are decoded into cce.Node trees with
// namespaces stripped so the cce package can work on local element names.
// Message signing is delegated to a Signer hook.
package soap
