package event

// Type identifies the type of domain event
type Type string

const (
	TypeNoticeRaised      Type = "notice.raised"
	TypeSuppliersLoaded   Type = "suppliers.loaded"
	TypeQuotationsLoaded  Type = "quotations.loaded"
	TypeLoadFailed        Type = "load.failed"
	TypeSelectionChanged  Type = "selection.changed"
	TypeResponseDiscarded Type = "response.discarded"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeNoticeRaised,
		TypeSuppliersLoaded,
		TypeQuotationsLoaded,
		TypeLoadFailed,
		TypeSelectionChanged,
		TypeResponseDiscarded:
		return true
	default:
		return false
	}
}
