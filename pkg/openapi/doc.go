// Package openapi generates OpenAPI 3.0 documents from registered
// endpoint declarations and serves them over HTTP, together with a
// server-rendered reference page.
//
// The generator is a read-only consumer: it sees each endpoint as an
// Operation value and never touches the routing table. Request schemas
// are derived from the same struct tags binding and validation read, so
// the document always describes what the pipeline actually enforces:
//
//	type CreateOrder struct {
//	    Tenant  string `claim:"tenant_id"`            // not documented
//	    ID      int    `param:"id"`                   // path parameter
//	    Note    string `json:"note" validate:"max:500"`
//	    Page    int    `query:"page" default:"1"`
//	}
//
// Authorization requirements that OpenAPI cannot express natively (roles,
// permissions, policies, claim presence) are emitted as x- extensions on
// the operation.
package openapi
