// Package errors provides structured, actionable diagnostics for the
// fsroute command.
//
// Each error has a code (e.g., "R002") that maps to a short message, a
// longer explanation and a documentation URL:
//
//	R001-R009  route templates (malformed, duplicate, invalid folder name)
//	R010-R019  configuration
//	R020-R029  route manifests
//	R030-R039  scanning the routes directory
//	R040-R059  CLI and server
//
// Build errors from package router are expanded with FromBuild into one
// RouteError per violation, carrying the page file and, for duplicates,
// both colliding templates:
//
//	ERROR R002: Duplicate route template
//
//	  app/routes/(shop)/cart/page.go
//
//	    │ /cart  /cart  (app/routes/cart/page.go)
//	    │ /(shop)/cart  /cart  (app/routes/(shop)/cart/page.go)
//
//	  Hint: Rename or remove one of the folders; parameter names alone do not make templates distinct
package errors
