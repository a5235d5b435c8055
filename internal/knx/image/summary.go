package image

import (
	"crypto/sha256"
	"encoding/hex"
)

// Summary is the durable record of one Build call: enough to answer
// "what did we last build for this program" without keeping the image
// bytes themselves around. internal/recorder persists it and
// internal/api's build endpoint serves it back as JSON.
type Summary struct {
	BaseAddress       uint32
	ImageSize         int
	GroupAddressCount int
	AssociationCount  int
	ComObjectCount    int
	ContentHash       string
}

// Summarize derives a Summary from a completed Build's output. It
// recomputes collectGroupAddresses rather than threading counts back
// out of Build, so a caller that only has img/base (e.g. one read back
// from storage) can't accidentally construct a mismatched Summary.
func Summarize(prog ApplicationProgram, device DeviceInstance, img []byte, base uint32) Summary {
	groupAddrs := collectGroupAddresses(device)

	associations := 0
	for _, obj := range device.Objects {
		for _, b := range obj.Bindings {
			if b.Connector == Send {
				associations++
			}
		}
	}

	sum := sha256.Sum256(img)

	return Summary{
		BaseAddress:       base,
		ImageSize:         len(img),
		GroupAddressCount: len(groupAddrs),
		AssociationCount:  associations,
		ComObjectCount:    len(prog.Context.CommunicationObjectNumbers()),
		ContentHash:       hex.EncodeToString(sum[:]),
	}
}
