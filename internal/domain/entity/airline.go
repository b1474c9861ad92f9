package entity

// Airline is a carrier from the airline reference table
type Airline struct {
	Code string
	Name string
	// Retired is set for soft-deleted rows, which still answer lookups.
	Retired bool
}
