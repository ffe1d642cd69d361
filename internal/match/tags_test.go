// internal/match/tags_test.go
package match

import (
	"testing"

	"github.com/calmdesk/calmdesk/internal/types"
)

func TestTagPredicate(t *testing.T) {
	tests := []struct {
		name string
		verb Verb
		want []int64
		tags []int64
		out  bool
	}{
		{"any_of hit", VerbContainsAnyOf, []int64{1, 2}, []int64{2, 9}, true},
		{"any_of miss", VerbContainsAnyOf, []int64{1, 2}, []int64{8, 9}, false},
		{"any_of no tags", VerbContainsAnyOf, []int64{1}, nil, false},
		{"all_of complete", VerbContainsAllOf, []int64{1, 2}, []int64{1, 2, 9}, true},
		{"all_of partial", VerbContainsAllOf, []int64{1, 2}, []int64{1, 9}, false},
		{"all_of no tags", VerbContainsAllOf, []int64{1}, nil, false},
		// contains_none_of complements contains_any_of, not contains_all_of.
		{"none_of untagged", VerbContainsNoneOf, []int64{5}, nil, true},
		{"none_of unrelated", VerbContainsNoneOf, []int64{5}, []int64{9}, true},
		{"none_of present", VerbContainsNoneOf, []int64{5}, []int64{5}, false},
		{"none_of mixed", VerbContainsNoneOf, []int64{5}, []int64{9, 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tagPredicate(tt.verb, tt.want)
			rec := &types.Ticket{ID: 1, TagIDs: tt.tags}
			if got := p(rec, nil); got != tt.out {
				t.Errorf("tagPredicate(%s, %v)(%v) = %v, want %v",
					tt.verb, tt.want, tt.tags, got, tt.out)
			}
		})
	}
}

func TestTagPredicate_Users(t *testing.T) {
	p := tagPredicate(VerbContainsAnyOf, []int64{3})
	if !p(&types.User{ID: 1, TagIDs: []int64{3}}, nil) {
		t.Errorf("tagPredicate on tagged user = false, want true")
	}
	if p(&types.User{ID: 2}, nil) {
		t.Errorf("tagPredicate on untagged user = true, want false")
	}
}

func TestTagPredicate_InvalidVerb(t *testing.T) {
	p := tagPredicate(VerbContains, []int64{1})
	if p(&types.Ticket{TagIDs: []int64{1}}, nil) {
		t.Errorf("tagPredicate with non-set verb = true, want never-match")
	}
}
