package manifest

// ParsedEntry is one validated manifest line with category and status
// normalized to upper case
type ParsedEntry struct {
	FlightNumber string
	Destination  string
	Name         string
	Category     string
	Status       string
	Seat         string
}

// FlightGroup collects the entries of one flight, in manifest order
type FlightGroup struct {
	FlightNumber string
	Destination  string
	Entries      []ParsedEntry
}

// Key identifies the group within a batch
func (g *FlightGroup) Key() string {
	return g.FlightNumber + "-" + g.Destination
}

// ParseResult is the outcome of parsing a whole manifest. Success is true
// iff no line was rejected; Entries holds the lines that did parse either way.
type ParseResult struct {
	Success bool          `json:"success"`
	Entries []ParsedEntry `json:"entries"`
	Errors  []string      `json:"errors"`
}

// Loyalty categories accepted on a manifest line
const (
	CategoryGold      = "GOLD"
	CategoryGoldPlus  = "GOLD_PLUS"
	CategoryPlatinum  = "PLATINUM"
	CategoryBlack     = "BLACK"
	CategoryTop       = "TOP"
	CategorySignature = "SIGNATURE"
)

// Passenger statuses accepted on a manifest line
const (
	StatusConfirmado = "CONFIRMADO"
	StatusPendiente  = "PENDIENTE"
	StatusCancelado  = "CANCELADO"
	StatusCheckin    = "CHECKIN"
)
