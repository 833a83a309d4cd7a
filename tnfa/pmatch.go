package tnfa

import "github.com/coregx/tre/syntax"

// Match is the byte range of a match or submatch. Both offsets are -1 when
// the group did not participate.
type Match struct {
	So int
	Eo int
}

// Len returns the length of the match, or 0 for an unset group.
func (m Match) Len() int {
	if m.So < 0 {
		return 0
	}
	return m.Eo - m.So
}

// fillPmatch converts the tag values of a match ending at matchEO into
// submatch offsets. Groups that end up outside one of their enclosing groups
// are reported as unset.
func (t *TNFA) fillPmatch(pmatch []Match, flags syntax.Flags, tags []int, matchEO int) {
	i := 0
	if matchEO >= 0 && flags&syntax.NoSub == 0 {
		tagValue := func(tag int) int {
			if tag == t.endTag {
				return matchEO
			}
			if tag < 0 || tag >= len(tags) {
				return -1
			}
			return tags[tag]
		}
		n := min(t.numSubmatches, len(pmatch))
		for ; i < n; i++ {
			sd := &t.submatchData[i]
			so, eo := tagValue(sd.SoTag), tagValue(sd.EoTag)
			if so == -1 || eo == -1 {
				so, eo = -1, -1
			}
			pmatch[i] = Match{So: so, Eo: eo}
		}

		for j := 0; j < n; j++ {
			for _, p := range t.submatchData[j].Parents {
				if p >= n {
					continue
				}
				if pmatch[j].So < pmatch[p].So || pmatch[j].Eo > pmatch[p].Eo {
					pmatch[j] = Match{So: -1, Eo: -1}
				}
			}
		}
	}
	for ; i < len(pmatch); i++ {
		pmatch[i] = Match{So: -1, Eo: -1}
	}
}
