// Package binder populates typed request shapes from the raw parts of an
// HTTP request: route parameters, headers, principal claims, the request
// body, and the query string.
//
// Fields declare their sources with struct tags:
//
//	type UpdateOrder struct {
//	    ID       int       `param:"id"`
//	    Tenant   string    `claim:"tenant_id"`
//	    Trace    string    `header:"X-Trace-Id"`
//	    Note     string    `json:"note"`
//	    Coupon   string    `form:"coupon"`
//	    Page     int       `query:"page" default:"1"`
//	    Deadline time.Time `query:"deadline"`
//	}
//
// When a field names several sources, the first populated one wins and the
// rest are not consulted. The order is fixed: claim, header, route
// parameter, body field, query parameter. Explicit directives (claim,
// header) outrank positional sources, so a tenant id lifted from the access
// token can never be overridden by a forged body field.
//
// Coercion failures and missing required values are collected per field and
// returned together; binding never stops at the first bad field. A
// `default:"v"` tag fills fields no source provided, and the `,required`
// tag option reports fields that ended up empty:
//
//	Limit int `query:"limit,required"`
package binder
