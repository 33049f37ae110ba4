package workflow

// Trigger represents an event that moves a data set between load states
type Trigger string

const (
	TriggerLoad    Trigger = "LOAD"
	TriggerSucceed Trigger = "SUCCEED"
	TriggerFail    Trigger = "FAIL"
	TriggerReset   Trigger = "RESET"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
