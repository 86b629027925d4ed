package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://fsroute.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Template Errors (R001-R009)
	// ============================================

	"R001": {
		Category: CategoryTemplate,
		Message:  "Malformed route template",
		Detail:   "A route template breaks a structural rule: catch-all segments must come last, a template holds at most one catch-all, and parameter names must be non-empty and unique.",
		DocURL:   docBase + "R001",
	},
	"R002": {
		Category: CategoryTemplate,
		Message:  "Duplicate route template",
		Detail:   "Two templates have the same shape. Parameter names do not distinguish templates, so /user/[id] and /user/[name] collide.",
		DocURL:   docBase + "R002",
	},
	"R003": {
		Category: CategoryTemplate,
		Message:  "Invalid route folder name",
		Detail:   "A folder name uses brackets but is not one of [name], [...name] or [[...name]].",
		DocURL:   docBase + "R003",
	},

	// ============================================
	// Configuration Errors (R010-R019)
	// ============================================

	"R010": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No fsroute.json was found.",
		DocURL:   docBase + "R010",
	},
	"R011": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "fsroute.json could not be read or parsed.",
		DocURL:   docBase + "R011",
	},
	"R012": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		DocURL:   docBase + "R012",
	},

	// ============================================
	// Manifest Errors (R020-R029)
	// ============================================

	"R020": {
		Category: CategoryManifest,
		Message:  "Failed to load route manifest",
		DocURL:   docBase + "R020",
	},
	"R021": {
		Category: CategoryManifest,
		Message:  "Failed to save route manifest",
		DocURL:   docBase + "R021",
	},

	// ============================================
	// Scan Errors (R030-R039)
	// ============================================

	"R030": {
		Category: CategoryScan,
		Message:  "Failed to scan routes directory",
		DocURL:   docBase + "R030",
	},

	// ============================================
	// CLI and Server Errors (R040-R059)
	// ============================================

	"R040": {
		Category: CategoryCLI,
		Message:  "No route matches path",
		DocURL:   docBase + "R040",
	},
	"R041": {
		Category: CategoryCLI,
		Message:  "Invalid request path",
		Detail:   "The path contains a backslash, a NUL byte, a malformed or encoded-slash escape, or climbs above the root.",
		DocURL:   docBase + "R041",
	},
	"R050": {
		Category: CategoryServer,
		Message:  "Server failed",
		DocURL:   docBase + "R050",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
