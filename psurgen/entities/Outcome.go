package entities

// Status tags how much of a section's source data survived extraction.
type Status string

const (
	StatusFull    Status = "full"
	StatusPartial Status = "partial"
	StatusEmpty   Status = "empty"
)

// Outcome is the degradation tag carried by every extraction result.
// Writers branch on it instead of probing results for emptiness.
type Outcome struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func Full() Outcome {
	return Outcome{Status: StatusFull}
}

func Partial(reason string) Outcome {
	return Outcome{Status: StatusPartial, Reason: reason}
}

func Empty(reason string) Outcome {
	return Outcome{Status: StatusEmpty, Reason: reason}
}

func (o Outcome) IsFull() bool {
	return o.Status == StatusFull
}

func (o Outcome) IsEmpty() bool {
	return o.Status == StatusEmpty
}
