package models

// Tick is one live trade print from the exchange stream. Timestamp is in
// unix seconds.
type Tick struct {
	Symbol    string
	Timestamp int64
	Price     float64
	Volume    float64
}
