package entities

// Event lets the processor route internal and public events to different
// topic namespaces.
type Event interface {
	IsInternal() bool
}

// BookingConfirmed_v1 is published after payment moves a room or table
// booking to CONFIRMED. Downstream notification systems consume it.
type BookingConfirmed_v1 struct {
	Header        EventHeader `json:"header"`
	BookingNumber string      `json:"booking_number"`
	BookingType   string      `json:"booking_type"`
	GuestName     string      `json:"guest_name"`
	GuestEmail    string      `json:"guest_email"`
	CheckInDate   string      `json:"check_in_date"`
	CheckOutDate  string      `json:"check_out_date"`
	TotalAmount   string      `json:"total_amount"`
}

func (e BookingConfirmed_v1) IsInternal() bool {
	return false
}

// OrderPlaced_v1 is published when a food order is created.
type OrderPlaced_v1 struct {
	Header      EventHeader `json:"header"`
	OrderNumber string      `json:"order_number"`
	OrderType   string      `json:"order_type"`
	GuestName   string      `json:"guest_name"`
	GuestEmail  string      `json:"guest_email"`
	TotalAmount string      `json:"total_amount"`
}

func (e OrderPlaced_v1) IsInternal() bool {
	return false
}

// OrderConfirmed_v1 is published after payment confirms a food order.
type OrderConfirmed_v1 struct {
	Header      EventHeader `json:"header"`
	OrderNumber string      `json:"order_number"`
	GuestName   string      `json:"guest_name"`
	GuestEmail  string      `json:"guest_email"`
	TotalAmount string      `json:"total_amount"`
}

func (e OrderConfirmed_v1) IsInternal() bool {
	return false
}

// PaymentProcessed_v1 records every terminal gateway outcome, success or
// failure.
type PaymentProcessed_v1 struct {
	Header        EventHeader `json:"header"`
	PaymentID     string      `json:"payment_id"`
	BookingNumber string      `json:"booking_number"`
	PaymentType   string      `json:"payment_type"`
	Status        string      `json:"status"`
	Amount        string      `json:"amount"`
	Currency      string      `json:"currency"`
}

func (e PaymentProcessed_v1) IsInternal() bool {
	return false
}
