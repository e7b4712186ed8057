package book

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// Opposite returns the side an incoming order matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

type Kind int

const (
	Limit Kind = iota
	Market
)

func (k Kind) String() string {
	if k == Market {
		return "market"
	}
	return "limit"
}

type Status int

const (
	Active Status = iota
	Inactive
)

// Order is a pure domain entity. ID is assigned by the submitter and
// never reused; Side, Kind and Price are immutable after creation.
// Only Filled moves, and only while the order rests on the book.
type Order struct {
	ID     uint64
	Price  int64
	Qty    int64
	Filled int64
	SeqID  uint64

	Side   Side
	Kind   Kind
	Status Status

	next *Order
	prev *Order
}

func (o *Order) Remaining() int64 {
	return o.Qty - o.Filled
}

// Read-only traversal helper
func (o *Order) Next() *Order {
	return o.next
}
