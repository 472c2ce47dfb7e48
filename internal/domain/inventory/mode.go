package inventory

// StockMode is the per-line policy for how a document line's quantity
// affects warehouse stock. The sign of the add/subtract pair selects the
// direction of the on-hand movement.
type StockMode int8

const (
	StockModeNone           StockMode = 0  // Line has no stock effect
	StockModeAdd            StockMode = 1  // Increases on-hand (e.g. goods received)
	StockModeSubtract       StockMode = -1 // Decreases on-hand (e.g. goods shipped)
	StockModePendingReceive StockMode = 2  // Expected inbound, not yet on hand
	StockModeReserve        StockMode = -2 // Promised outbound, still on hand
)

// IsValid checks if the mode is a known StockMode
func (m StockMode) IsValid() bool {
	switch m {
	case StockModeNone, StockModeAdd, StockModeSubtract, StockModePendingReceive, StockModeReserve:
		return true
	}
	return false
}

// String returns a readable name for the mode
func (m StockMode) String() string {
	switch m {
	case StockModeAdd:
		return "add"
	case StockModeSubtract:
		return "subtract"
	case StockModePendingReceive:
		return "pending-receive"
	case StockModeReserve:
		return "reserve"
	default:
		return "none"
	}
}
