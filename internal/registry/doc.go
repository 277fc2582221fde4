// Package registry loads algorithm signatures from the algorithms/ directory
// of a datapackage.
//
// A signature is validated once, when it is first loaded, so that the rest of
// dpctl can rely on its invariants: unique variable names, rule and target
// references that resolve, payloads that conform to the declared types. Every
// problem found is reported at once in a single ErrSchemaInvalid error.
// Loaded signatures are cached for the lifetime of the Registry.
package registry
