package models

// BatchType identifies a batch offering.
type BatchType string

// Known batch offerings.
const (
	BatchMorning BatchType = "morning"
	BatchEvening BatchType = "evening"
	BatchFull    BatchType = "full"
	BatchPrivate BatchType = "private"
)

// Valid reports whether the batch type is one of the known offerings.
func (t BatchType) Valid() bool {
	switch t {
	case BatchMorning, BatchEvening, BatchFull, BatchPrivate:
		return true
	}
	return false
}

// Batch is a scheduled cohort of tutoring sessions with fixed capacity and price.
type Batch struct {
	BatchType   BatchType `db:"batch_type" json:"batch_type"`
	Name        string    `db:"name" json:"name"`
	TimeSlot    string    `db:"time_slot" json:"time_slot"`
	Capacity    int       `db:"capacity" json:"capacity"`
	Price       string    `db:"price" json:"price"`
	Icon        string    `db:"icon" json:"icon"`
	Description string    `db:"description" json:"description,omitempty"`
	Teacher     string    `db:"teacher" json:"teacher,omitempty"`
	SortOrder   int       `db:"sort_order" json:"-"`
}

// BatchWithEnrollment pairs a batch with the number of registered students.
type BatchWithEnrollment struct {
	Batch
	Enrolled int `json:"enrolled"`
}

// Remaining returns the number of open seats, never below zero.
func (b BatchWithEnrollment) Remaining() int {
	if b.Enrolled >= b.Capacity {
		return 0
	}
	return b.Capacity - b.Enrolled
}

// IsFull reports whether the batch has no open seats.
func (b BatchWithEnrollment) IsFull() bool {
	return b.Enrolled >= b.Capacity
}

// DefaultBatches is the built-in catalog used when no batches table exists.
func DefaultBatches() []Batch {
	return []Batch{
		{BatchType: BatchMorning, Name: "Morning Batch", TimeSlot: "6:00 AM - 8:00 AM", Capacity: 30, Price: "₹3,500/month", Icon: "🌅", SortOrder: 1},
		{BatchType: BatchEvening, Name: "Evening Batch", TimeSlot: "6:00 PM - 8:00 PM", Capacity: 30, Price: "₹3,500/month", Icon: "🌆", SortOrder: 2},
		{BatchType: BatchFull, Name: "Full Day Batch", TimeSlot: "9:00 AM - 3:00 PM", Capacity: 20, Price: "₹6,000/month", Icon: "📚", SortOrder: 3},
		{BatchType: BatchPrivate, Name: "Private Tutoring", TimeSlot: "Flexible Timing", Capacity: 5, Price: "₹10,000/month", Icon: "👨‍🏫", SortOrder: 4},
	}
}
