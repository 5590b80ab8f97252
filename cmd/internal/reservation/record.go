package reservation

import "time"

// LockFields is the closed set of lock-derived fields stamped into a record.
type LockFields struct {
	ResourceID string    `json:"resourceId"`
	Title      string    `json:"title"`
	LockedAt   time.Time `json:"lockedAt"`
	// CapacitySnapshot is the capacity in force when the record was committed.
	CapacitySnapshot int `json:"capacitySnapshot"`
}

// Record is a holder's durable registration.
type Record struct {
	ID        string      `json:"id"`
	HolderID  string      `json:"holderId"`
	Team      Team        `json:"team"`
	Lock      *LockFields `json:"lock,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ResourceID returns the reserved problem statement id, or "" for records
// created without a lock.
func (r Record) ResourceID() string {
	if r.Lock == nil {
		return ""
	}
	return r.Lock.ResourceID
}

func (r Record) clone() Record {
	out := r
	if r.Lock != nil {
		l := *r.Lock
		out.Lock = &l
	}
	if r.Team.Members != nil {
		out.Team.Members = append([]Member(nil), r.Team.Members...)
	}
	return out
}
