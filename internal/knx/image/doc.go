// Package image builds a device's binary memory image from an
// ApplicationProgram (the device-independent address/association/
// communication-object table descriptors and the dynamic parameter
// tree) and a DeviceInstance (the device's individual address,
// parameter overrides, and group-address bindings).
//
// The image is assembled into a sparse address space and flattened
// only once every table and parameter has been written, so segments
// can be populated in any order without the writer needing to know the
// final image size up front.
package image
