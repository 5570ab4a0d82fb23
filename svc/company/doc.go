// Package company scopes portal requests to a tenant company.
//
// The company comes from the request (header, query parameter or subdomain,
// combined with Chain) or, when the request names none, from the company
// claim of the signed-in user. Role resolution and resource counting are
// per company; the subscription itself belongs to the user.
package company
