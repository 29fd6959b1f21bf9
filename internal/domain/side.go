package domain

// Side identifies which side of a reserve a reward stream or user share
// is attached to.
type Side string

const (
	SideDeposit Side = "DEPOSIT"
	SideBorrow  Side = "BORROW"
)

// String returns the string representation of Side.
func (s Side) String() string {
	return string(s)
}

// IsValid checks if the side is a valid value.
func (s Side) IsValid() bool {
	return s == SideDeposit || s == SideBorrow
}
