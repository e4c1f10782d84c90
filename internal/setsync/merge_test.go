package setsync

import (
	"alcyxob/sets-tracker/internal/domain"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mergeBase = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

// side builds one copy of the set list. stamps[i] < 0 means id s<i> is absent,
// otherwise it was last modified stamps[i] minutes after mergeBase. Reps tags
// which side the copy came from.
func side(stamps []int, tag int) []domain.LoggedSet {
	out := []domain.LoggedSet{}
	for i, m := range stamps {
		if m < 0 {
			continue
		}
		reps := tag
		stamp := domain.FormatISO(mergeBase.Add(time.Duration(m) * time.Minute))
		out = append(out, domain.LoggedSet{
			ID:           fmt.Sprintf("s%d", i),
			Reps:         &reps,
			CreatedAtISO: domain.FormatISO(mergeBase),
			UpdatedAtISO: stamp,
		})
	}
	return out
}

const (
	localTag  = 1
	remoteTag = 2
)

func stampGen() gopter.Gen {
	return gen.SliceOfN(6, gen.IntRange(-1, 20))
}

func TestMergeSetsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every id appears exactly once", prop.ForAll(
		func(l, r []int) bool {
			if len(l) != len(r) {
				return true
			}
			merged := MergeSets(side(l, localTag), side(r, remoteTag))
			seen := map[string]int{}
			for _, s := range merged {
				seen[s.ID]++
			}
			for i := range l {
				id := fmt.Sprintf("s%d", i)
				want := 0
				if l[i] >= 0 || r[i] >= 0 {
					want = 1
				}
				if seen[id] != want {
					return false
				}
			}
			return len(seen) == len(merged)
		},
		stampGen(), stampGen(),
	))

	properties.Property("the later copy wins and ties go to remote", prop.ForAll(
		func(l, r []int) bool {
			if len(l) != len(r) {
				return true
			}
			for _, s := range MergeSets(side(l, localTag), side(r, remoteTag)) {
				var i int
				fmt.Sscanf(s.ID, "s%d", &i)
				switch {
				case l[i] < 0:
					if *s.Reps != remoteTag {
						return false
					}
				case r[i] < 0:
					if *s.Reps != localTag {
						return false
					}
				case l[i] > r[i]:
					if *s.Reps != localTag {
						return false
					}
				default:
					if *s.Reps != remoteTag {
						return false
					}
				}
			}
			return true
		},
		stampGen(), stampGen(),
	))

	properties.Property("merging the same remote twice changes nothing", prop.ForAll(
		func(l, r []int) bool {
			remote := side(r, remoteTag)
			once := MergeSets(side(l, localTag), remote)
			twice := MergeSets(once, remote)
			if len(once) != len(twice) {
				return false
			}
			for i := range once {
				if once[i].ID != twice[i].ID || *once[i].Reps != *twice[i].Reps {
					return false
				}
			}
			return true
		},
		stampGen(), stampGen(),
	))

	properties.TestingRun(t)
}

func TestMergeSetsOrder(t *testing.T) {
	local := side([]int{5, -1, 5, -1}, localTag)
	remote := side([]int{-1, 3, 9, 1}, remoteTag)

	merged := MergeSets(local, remote)

	ids := make([]string, len(merged))
	for i, s := range merged {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"s0", "s2", "s1", "s3"}, ids)
	assert.Equal(t, remoteTag, *merged[1].Reps)
}

func TestMergeSetsFallsBackToCreatedAt(t *testing.T) {
	older := domain.LoggedSet{ID: "a", CreatedAtISO: "2025-03-01T18:00:00.000Z"}
	newer := domain.LoggedSet{ID: "a", CreatedAtISO: "2025-03-01T18:00:00.000Z", UpdatedAtISO: "2025-03-01T19:00:00.000Z"}

	merged := MergeSets([]domain.LoggedSet{newer}, []domain.LoggedSet{older})
	require.Len(t, merged, 1)
	assert.Equal(t, newer.UpdatedAtISO, merged[0].UpdatedAtISO)

	assert.Empty(t, MergeSets(nil, nil))
}
