package market

import "slices"

// AdminList is the static set of privileged user ids.
type AdminList struct {
	ids []int64
}

// NewAdminList builds an allow-list; duplicates and zero ids are dropped.
func NewAdminList(ids ...int64) AdminList {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != 0 && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return AdminList{ids: out}
}

// Contains reports whether userID is an admin.
func (a AdminList) Contains(userID int64) bool {
	return slices.Contains(a.ids, userID)
}

// IDs returns a copy of the admin ids in configuration order.
func (a AdminList) IDs() []int64 {
	return slices.Clone(a.ids)
}
