package domain

// Venue identifies the trading protocol that produced a transaction.
// The set is closed: transactions from any other program classify as Unknown.
type Venue string

const (
	VenueJupiter Venue = "Jupiter"
	VenueRaydium Venue = "Raydium"
	VenuePumpFun Venue = "Pump.fun"
	VenueUnknown Venue = "Unknown"
)

// KnownVenues lists the decodable venues in classification priority order.
var KnownVenues = []Venue{VenueJupiter, VenueRaydium, VenuePumpFun}

// Valid reports whether v is one of the closed set of venues.
func (v Venue) Valid() bool {
	switch v {
	case VenueJupiter, VenueRaydium, VenuePumpFun, VenueUnknown:
		return true
	}
	return false
}
