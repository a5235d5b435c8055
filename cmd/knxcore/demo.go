package main

import (
	"github.com/knxcore/knxcore/internal/knx/address"
	"github.com/knxcore/knxcore/internal/knx/dpt"
	"github.com/knxcore/knxcore/internal/knx/image"
	"github.com/knxcore/knxcore/internal/knx/program"
)

// demoContext registers the memory segments and the single switch
// datapoint a minimal MV-0701 device needs, matching the layout
// internal/knx/image's own build tests exercise against the address
// and association table builders.
func demoContext() *program.ProgramContext {
	ctx := program.NewContext()
	ctx.RegisterDatapoint(program.Datapoint{ID: dpt.Switch, Name: "switch"})         //nolint:errcheck // literal constants, cannot fail
	ctx.RegisterSegment(program.Segment{ID: "addr", BaseAddress: 0x4000, MaxEntries: 16})   //nolint:errcheck // literal constants, cannot fail
	ctx.RegisterSegment(program.Segment{ID: "assoc", BaseAddress: 0x4100, MaxEntries: 16})  //nolint:errcheck // literal constants, cannot fail
	ctx.RegisterSegment(program.Segment{ID: "comobj", BaseAddress: 0x4200, MaxEntries: 16}) //nolint:errcheck // literal constants, cannot fail
	ctx.RegisterSegment(program.Segment{ID: "ram", BaseAddress: 0x0100, MaxEntries: 1024})  //nolint:errcheck // literal constants, cannot fail
	ctx.RegisterCommunicationObject(program.CommunicationObject{ //nolint:errcheck // literal constants, cannot fail
		Number: 0, Name: "switch", Size: 1, DatapointID: dpt.Switch,
		Flags: program.Flags{Communication: true, Read: true, Transmit: true, Priority: program.Priority(0b11)},
	})
	return ctx
}

// demoProgram returns a single-communication-object application program
// used by the "build" subcommand to exercise the image builder end to
// end against the build_results store, in lieu of a real ETS-exported
// application program (out of scope per SPEC_FULL.md).
func demoProgram() image.ApplicationProgram {
	return image.ApplicationProgram{
		Context:          demoContext(),
		AddressTable:     image.TableDescriptor{Segment: "addr", MaxEntries: 16},
		AssociationTable: image.TableDescriptor{Segment: "assoc", MaxEntries: 16},
		ComObjectTable:   image.TableDescriptor{Segment: "comobj", MaxEntries: 16},
		RAMSegment:       "ram",
		MaskVersion:      "MV-0701",
	}
}

// demoDevice returns the device instance paired with demoProgram: one
// switch object at individual address 1.1.1, sending to group address
// 0/0/1.
func demoDevice() (image.DeviceInstance, error) {
	ia, err := address.ParseIndividual("1.1.1")
	if err != nil {
		return image.DeviceInstance{}, err
	}
	ga, err := address.ParseGroup("0/0/1")
	if err != nil {
		return image.DeviceInstance{}, err
	}
	return image.DeviceInstance{
		IndividualAddress: ia,
		Objects: []image.COBinding{
			{Number: 0, Bindings: []image.GroupBinding{{Address: ga, Connector: image.Send}}},
		},
	}, nil
}
