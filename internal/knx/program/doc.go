// Package program models a loaded device-application program: the
// Datapoint, Parameter, Segment, and CommunicationObject registries a
// device image is built from, plus the dynamic Choose/When/Assign tree
// that selects which parameters are active under the device's current
// configuration.
//
// The source language keeps these as process-wide mutable class
// tables (a `Table` dict living on the Parameter/Datapoint/Segment
// classes themselves). This package re-expresses that as an explicit
// ProgramContext value: every id→record map lives on one struct built
// once when a program is loaded, passed by reference to whatever needs
// to resolve an id, and never mutated afterwards by the image builder.
//
// Similarly, the Choose/When/Assign tree is not walked by mutating a
// shared parameter-value map in traversal order; Traverse takes an
// explicit Environment, collects every Assign reached along the active
// path, and applies them only after the walk completes, so a node's
// branch selection never depends on an Assign performed earlier in the
// same traversal.
package program
