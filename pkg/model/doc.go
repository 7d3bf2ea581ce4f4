// Package model defines the value types shared across the document pipeline:
// forms, field descriptors, submission entries, and document profiles. The
// types are plain data; behaviour lives in the packages that consume them.
package model
