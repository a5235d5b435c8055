// Package telegram implements the link-layer frame format exchanged on a
// KNX/EIB bus: encoding, decoding, and checksum verification.
//
// A frame is modelled as tagged variants plus a dispatch table, rather
// than the multi-level class hierarchy with per-subclass Match/SubTypeId
// registration that an object-oriented source would use: Header carries
// the fields shared by every frame kind, and the header's Class and
// Transport decide which of a Frame's variant pointers (Control, Group,
// Memory, Management, or an opaque Raw payload) is populated. Decode walks this
// tree exactly once, top to bottom, matching the discrimination table
// below; it never registers or looks up subclasses at runtime.
//
// Discrimination tree (byte offsets are big-endian, bit 7 = MSB):
//
//	byte0 bits6-7        -> FrameClass: Data(10) / ExtendedData(00) / Poll(11)
//	byte6 bits0-1        -> TransportKind (Data frames only): UnnumberedData(00),
//	                        NumberedData(01), UnnumberedControl(10), NumberedControl(11)
//	byte6 bits6-7        -> ControlCode (Control frames only): Connect/Disconnect
//	                        (Unnumbered) or Ack/Nack (Numbered)
//	byte7 bits6-7        -> GroupService (Unnumbered/NumberedData): GetValue(00),
//	                        GetValueResponse(01), SendValue(10), PhysicalAddressSet(11)
//	byte7 bits6-7 == 10   -> MemoryService (NumberedData only), sub-selected by
//	                        byte7 bits4-5: Read/Response/Write
//	byte7 bits6-7 == 11   -> Management service (NumberedData only): opaque code
//
// ExtendedData and Poll frames are not decomposed further in this core;
// their payload is carried opaquely in Frame.Raw.
package telegram
