package attendance

// ResetService clears all attendance data in one destructive, irreversible
// operation. Any confirmation step belongs to the caller.
type ResetService struct {
	store *Store
}

// NewResetService creates a reset service over store.
func NewResetService(store *Store) *ResetService {
	return &ResetService{store: store}
}

// ResetAll truncates the attendance table to its header row. The students
// table is untouched.
func (r *ResetService) ResetAll() error {
	return r.store.tbl.Save(nil)
}
