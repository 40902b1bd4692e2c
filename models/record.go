package models

// MaxLogHistory caps the per-user check-in history kept on the record.
const MaxLogHistory = 5

// UserRecord holds one registered user's schedule and streak state.
// Dates are calendar dates ("2006-01-02") in the user's own timezone; an
// empty LastSuccessDate means the user never succeeded or the streak was reset.
type UserRecord struct {
	DisplayName     string   `json:"displayName,omitempty"`
	Wake            string   `json:"wake"`  // "HH:MM", user-local
	Sleep           string   `json:"sleep"` // informational only, never evaluated
	Timezone        string   `json:"timezone"`
	Streak          int      `json:"streak"`
	LastSuccessDate string   `json:"lastSuccessDate,omitempty"`
	LogHistory      []string `json:"logs"` // most recent first, len <= MaxLogHistory
}

// Clone returns a deep copy so callers never hold a reference into the store.
func (r *UserRecord) Clone() *UserRecord {
	cp := *r
	cp.LogHistory = append(make([]string, 0, len(r.LogHistory)), r.LogHistory...)
	return &cp
}
