package ranking

import "fmt"

// RecentWindow is how many of the most recent history entries feed a profile
const RecentWindow = 5

// Profile summarizes what a listener has been playing lately.
// It is built per request and discarded afterwards.
type Profile struct {
	// Artists and Genres are ordered token sets (first occurrence wins)
	Artists []string
	Genres  []string

	// Recent holds the resolved items of the last RecentWindow history positions,
	// most recent first. The same item may occupy several positions.
	Recent []CatalogItem

	recentIDs map[string]struct{}
}

// Empty reports whether no history could be resolved, i.e. no personalization is available
func (p Profile) Empty() bool {
	return len(p.Recent) == 0
}

// Contains reports whether the item with id is one of the recently matched items
func (p Profile) Contains(id string) bool {
	_, ok := p.recentIDs[id]
	return ok
}

// orderedSet keeps insertion order while deduplicating exact values
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) bool {
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// BuildProfile derives an affinity profile from history (oldest first).
// Only the last RecentWindow entries are considered, most recent first. Ids missing
// from the snapshot are skipped so a deleted song never aborts the build.
func BuildProfile(history []string, snap *Snapshot) (Profile, error) {
	if snap == nil {
		return Profile{}, fmt.Errorf("build profile: nil catalog snapshot: %w", ErrInvalidInput)
	}

	profile := Profile{recentIDs: make(map[string]struct{})}
	if len(history) == 0 {
		return profile, nil
	}

	window := RecentWindow
	if len(history) < window {
		window = len(history)
	}

	idx := snap.index()
	artists := newOrderedSet()
	genres := newOrderedSet()
	artistTokens := newOrderedSet()
	genreTokenSet := newOrderedSet()

	for i := 0; i < window; i++ {
		id := history[len(history)-1-i]
		pos, ok := idx[id]
		if !ok {
			continue
		}
		item := snap.Items[pos]
		profile.Recent = append(profile.Recent, item)
		profile.recentIDs[item.ID] = struct{}{}

		if artists.add(item.Artist) {
			for _, tok := range tokenize(item.Artist) {
				artistTokens.add(tok)
			}
		}
		for _, g := range item.Genre {
			if genres.add(g) {
				for _, tok := range tokenize(g) {
					genreTokenSet.add(tok)
				}
			}
		}
	}

	profile.Artists = artistTokens.items
	profile.Genres = genreTokenSet.items
	return profile, nil
}
