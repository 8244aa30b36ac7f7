package models

import "time"

// Card is the leaf work item, contained in exactly one column.
type Card struct {
	ID          string     `json:"id" db:"id"`
	ColumnID    string     `json:"column_id" db:"column_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	Status      string     `json:"status" db:"status"`
	Priority    string     `json:"priority" db:"priority"`
	Position    int        `json:"position" db:"position"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	Labels      []string   `json:"labels,omitempty" db:"labels"`
	CreatedBy   string     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// Populated on reads, not stored on the card row itself.
	Assignments    []CardAssignment `json:"assignments,omitempty" db:"-"`
	ChecklistItems []ChecklistItem  `json:"checklist_items,omitempty" db:"-"`
}

// CardAssignment records that a user was assigned to a card and by whom.
type CardAssignment struct {
	ID         string    `json:"id" db:"id"`
	CardID     string    `json:"card_id" db:"card_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	AssignedBy string    `json:"assigned_by" db:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at" db:"assigned_at"`
}

// ChecklistItem is an ordered to-do entry on a card.
type ChecklistItem struct {
	ID        string    `json:"id" db:"id"`
	CardID    string    `json:"card_id" db:"card_id"`
	Text      string    `json:"text" db:"text"`
	Completed bool      `json:"completed" db:"completed"`
	Position  int       `json:"position" db:"position"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CardUpdate is a partial update payload for a card. Pointer fields
// distinguish "not present" from zero values so the protection gate can
// reason about exactly which fields a request touches.
type CardUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Position    *int       `json:"position,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Labels      *[]string  `json:"labels,omitempty"`
	AssignedTo  *[]string  `json:"assigned_to,omitempty"`
}

// Fields returns the names of the fields present in the update, matching
// their JSON names. AssignedTo counts as a field here so the gate can
// restrict it during review; membership validation of the targets happens
// separately.
func (u *CardUpdate) Fields() []string {
	var fields []string
	if u.Title != nil {
		fields = append(fields, "title")
	}
	if u.Description != nil {
		fields = append(fields, "description")
	}
	if u.Status != nil {
		fields = append(fields, "status")
	}
	if u.Priority != nil {
		fields = append(fields, "priority")
	}
	if u.Position != nil {
		fields = append(fields, "position")
	}
	if u.DueDate != nil {
		fields = append(fields, "due_date")
	}
	if u.Labels != nil {
		fields = append(fields, "labels")
	}
	if u.AssignedTo != nil {
		fields = append(fields, "assigned_to")
	}
	return fields
}
