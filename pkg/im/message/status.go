package message

// Status is an Interaction Model status code.
// Spec: Section 8.10, Table 8-36
type Status uint8

const (
	StatusSuccess               Status = 0x00
	StatusFailure               Status = 0x01
	StatusUnsupportedAccess     Status = 0x7e
	StatusUnsupportedEndpoint   Status = 0x7f
	StatusInvalidAction         Status = 0x80
	StatusUnsupportedCommand    Status = 0x81
	StatusInvalidCommand        Status = 0x85
	StatusUnsupportedAttribute  Status = 0x86
	StatusConstraintError       Status = 0x87
	StatusUnsupportedWrite      Status = 0x88
	StatusResourceExhausted     Status = 0x89
	StatusNotFound              Status = 0x8b
	StatusInvalidDataType       Status = 0x8d
	StatusUnsupportedRead       Status = 0x8f
	StatusDataVersionMismatch   Status = 0x92
	StatusTimeout               Status = 0x94
	StatusBusy                  Status = 0x9c
	StatusAccessRestricted      Status = 0x9d
	StatusUnsupportedCluster    Status = 0xc3
	StatusNeedsTimedInteraction Status = 0xc6
	StatusInvalidInState        Status = 0xcb
)

var statusNames = map[Status]string{
	StatusSuccess:               "Success",
	StatusFailure:               "Failure",
	StatusUnsupportedAccess:     "UnsupportedAccess",
	StatusUnsupportedEndpoint:   "UnsupportedEndpoint",
	StatusInvalidAction:         "InvalidAction",
	StatusUnsupportedCommand:    "UnsupportedCommand",
	StatusInvalidCommand:        "InvalidCommand",
	StatusUnsupportedAttribute:  "UnsupportedAttribute",
	StatusConstraintError:       "ConstraintError",
	StatusUnsupportedWrite:      "UnsupportedWrite",
	StatusResourceExhausted:     "ResourceExhausted",
	StatusNotFound:              "NotFound",
	StatusInvalidDataType:       "InvalidDataType",
	StatusUnsupportedRead:       "UnsupportedRead",
	StatusDataVersionMismatch:   "DataVersionMismatch",
	StatusTimeout:               "Timeout",
	StatusBusy:                  "Busy",
	StatusAccessRestricted:      "AccessRestricted",
	StatusUnsupportedCluster:    "UnsupportedCluster",
	StatusNeedsTimedInteraction: "NeedsTimedInteraction",
	StatusInvalidInState:        "InvalidInState",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}
