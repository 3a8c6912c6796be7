package services

// LedgerStore abstracts the per-student completion ledgers.
type LedgerStore interface {
	HasCompletion(username, examID string) (bool, error)
	AddCompletion(username, examID string) error
}

// Ledger records which exams a student has already taken. Entries are
// append-only; presence of an entry means the exam may not be taken again.
type Ledger struct {
	store LedgerStore
}

func NewLedger(store LedgerStore) *Ledger { return &Ledger{store: store} }

func (l *Ledger) HasTaken(username, examID string) (bool, error) {
	ok, err := l.store.HasCompletion(username, examID)
	if err != nil {
		return false, NewStorageError("could not read completion ledger", err)
	}
	return ok, nil
}

// MarkTaken appends the entry. It is called once, when a session commits.
func (l *Ledger) MarkTaken(username, examID string) error {
	if err := l.store.AddCompletion(username, examID); err != nil {
		return NewStorageError("could not update completion ledger", err)
	}
	return nil
}
