package mission

import (
	"github.com/samber/lo"
)

// DetectionSet is the ordered set of card names identified so far. It only grows, never holds a
// name twice and never grows past its quota.
type DetectionSet struct {
	quota int
	names []string
}

// NewDetectionSet returns an empty set closing at quota names.
func NewDetectionSet(quota int) *DetectionSet {
	return &DetectionSet{quota: quota}
}

// Add inserts name and reports whether the set grew. Empty names, names already present and
// names past the quota are ignored.
func (ds *DetectionSet) Add(name string) bool {
	if name == "" || ds.Complete() || ds.Contains(name) {
		return false
	}
	ds.names = append(ds.names, name)
	return true
}

// Contains reports whether name was already identified.
func (ds *DetectionSet) Contains(name string) bool {
	return lo.Contains(ds.names, name)
}

// Len returns the number of identified names.
func (ds *DetectionSet) Len() int {
	return len(ds.names)
}

// Quota returns the size at which the mission is complete.
func (ds *DetectionSet) Quota() int {
	return ds.quota
}

// Complete reports whether the quota is reached.
func (ds *DetectionSet) Complete() bool {
	return len(ds.names) >= ds.quota
}

// Names returns the identified names in detection order.
func (ds *DetectionSet) Names() []string {
	return append([]string(nil), ds.names...)
}

func (ds *DetectionSet) clone() *DetectionSet {
	return &DetectionSet{quota: ds.quota, names: ds.Names()}
}
