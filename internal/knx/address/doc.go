// Package address implements KNX individual and group addresses.
//
// A KNX address is a 16-bit value. Two conventions split those bits
// differently depending on what the address names:
//
//   - Individual address ("area.line.device"): 4/4/8 bits.
//   - Group address ("main/middle/sub"): 5/3/8 bits.
//
// Both variants are represented by the single Address type, discriminated
// by Kind, so code that handles a telegram's source/destination pair
// (which may be either kind) does not need two parallel types.
package address
