package deadline

// State is the urgency state of a submission deadline
type State string

const (
	StateNoDate      State = "NO_DATE"
	StateExpired     State = "EXPIRED"
	StateDueToday    State = "DUE_TODAY"
	StateDueTomorrow State = "DUE_TOMORROW"
	StateDueSoon     State = "DUE_SOON"
	StateDueThisWeek State = "DUE_THIS_WEEK"
	StateActive      State = "ACTIVE"
)

// Tier is the coarse urgency bucket used for styling
type Tier string

const (
	TierNone    Tier = "none"
	TierHighest Tier = "highest"
	TierHigh    Tier = "high"
	TierMedium  Tier = "medium"
	TierLow     Tier = "low"
)

var stateTiers = map[State]Tier{
	StateNoDate:      TierNone,
	StateExpired:     TierHighest,
	StateDueToday:    TierHighest,
	StateDueTomorrow: TierHigh,
	StateDueSoon:     TierHigh,
	StateDueThisWeek: TierMedium,
	StateActive:      TierLow,
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known deadline state
func (s State) IsValid() bool {
	_, ok := stateTiers[s]
	return ok
}

// Tier returns the urgency tier of the state
func (s State) Tier() Tier {
	return stateTiers[s]
}

// IsUrgent is true for the highest and high tiers
func (s State) IsUrgent() bool {
	t := s.Tier()
	return t == TierHighest || t == TierHigh
}
