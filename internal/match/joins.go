// internal/match/joins.go
package match

import "strings"

// JoinSet is the set of relation preloads a compiled rule requires. The bulk
// Matching path unions the joins of every condition and loads each relation
// exactly once, so a rule touching tags in three conditions still costs one
// tag preload and can never multiply result rows.
type JoinSet uint8

const (
	JoinTags JoinSet = 1 << iota
	JoinComments
	JoinActivities
	JoinSurveys
	JoinFieldResponses
)

// Has reports whether every join in j is present in s.
func (s JoinSet) Has(j JoinSet) bool { return s&j == j }

// Union returns the combination of both join sets.
func (s JoinSet) Union(o JoinSet) JoinSet { return s | o }

// String lists the joins for logs and test failure messages.
func (s JoinSet) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, e := range []struct {
		j    JoinSet
		name string
	}{
		{JoinTags, "tags"},
		{JoinComments, "comments"},
		{JoinActivities, "activities"},
		{JoinSurveys, "surveys"},
		{JoinFieldResponses, "field_responses"},
	} {
		if s.Has(e.j) {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, ",")
}
