// Package resource stores the tabular documents bound to resource and
// parameter variables, their metaschemas and the run's last-updated marker.
//
// A resource whose schema is the "metaschema" sentinel borrows the schema
// declared by its variable. Loading substitutes it and tags the resource;
// writing restores the sentinel so the borrowed schema never reaches disk.
package resource
