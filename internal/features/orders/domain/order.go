package domain

import (
	"encoding/json"
	"time"

	"github.com/araddon/dateparse"
)

// Order is a single purchase record exactly as the store API returned it.
// Fields are passed through untouched; numbers decode as json.Number.
type Order map[string]any

// OrderList is a page of orders in API order.
type OrderList []Order

// ID returns the order's "id" field in its textual form.
func (o Order) ID() (string, bool) {
	switch v := o["id"].(type) {
	case json.Number:
		return v.String(), true
	case string:
		return v, v != ""
	default:
		return "", false
	}
}

// UpdatedAt returns the parsed "updated_at" field, keeping the store's UTC offset.
func (o Order) UpdatedAt() (time.Time, bool) {
	s, ok := o["updated_at"].(string)
	if !ok || s == "" {
		return time.Time{}, false
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LatestUpdate returns the newest updated_at across the list.
func (l OrderList) LatestUpdate() (time.Time, bool) {
	var latest time.Time
	found := false

	for _, o := range l {
		t, ok := o.UpdatedAt()
		if !ok {
			continue
		}
		if !found || t.After(latest) {
			latest = t
			found = true
		}
	}
	return latest, found
}

// SyncResult describes one incremental pull of updated orders.
type SyncResult struct {
	// Since is the cursor the pull started from.
	Since time.Time `json:"since"`
	// Cursor is the cursor stored after the pull.
	Cursor time.Time `json:"cursor"`
	// Orders are the orders returned by the store, in API order.
	Orders OrderList `json:"orders"`
}
