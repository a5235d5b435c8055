// Package dpt implements KNX Datapoint Type (DPT) identifiers and their
// bit-level format description, plus encode/decode helpers for the
// datapoint types in common use in building automation.
//
// A Type is identified by a string id of the form "DPT-n" (generic) or
// "DPST-n-m" (specific subtype n.m), carries a fixed total size in bits,
// and an ordered list of Fields describing how those bits are carved up.
// Field variants are Bit, UnsignedInteger, SignedInteger, Float, String,
// Enumeration, and RefType (an alias resolved against a Registry and
// cloned at a new bit offset).
//
// Types are registered once, at program-load time, into a Registry and
// looked up read-only thereafter — there is no process-wide mutable
// table (see spec §9's re-expression of the source's class-level
// registries as an explicit, passed-around value).
package dpt
