package models

// Write is one change staged by a transaction. Exactly one field is set.
type Write struct {
	Create *Record
	Update *Record
	Audit  *AuditEntry
}
