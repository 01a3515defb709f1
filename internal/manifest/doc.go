// Package manifest handles parsing and validation of module manifests
// (module.yaml, or module.json as a fallback). A manifest declares a
// module's description, version, required modules, boot priority and the
// name of its bootstrapper. Validation runs against an embedded JSON Schema
// and checks version strings and requirement constraints for semver syntax.
package manifest
