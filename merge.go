package gridcore

import "sort"

// MergeRegion is one merged block of cells. Regions are immutable value
// objects; the registry copies them into both of its indices.
type MergeRegion struct {
	Range Range
}

// Anchor returns the top-left coordinate, the only cell in a merge that
// retains its stored value.
func (r MergeRegion) Anchor() Coordinate { return r.Range.TopLeft() }

// MergedCellRegistry keeps two indices over the same set of regions: every
// covered coordinate maps to its region, and every anchor maps to its
// region. A valid registry has no two overlapping regions and every region
// covers at least two cells.
type MergedCellRegistry struct {
	byCoord  map[Coordinate]MergeRegion
	byAnchor map[Coordinate]MergeRegion
	feed     *ChangeFeed
}

// NewMergedCellRegistry creates an empty registry. feed may be nil; when
// present, merge and unmerge events are published to it.
func NewMergedCellRegistry(feed *ChangeFeed) *MergedCellRegistry {
	return &MergedCellRegistry{
		byCoord:  make(map[Coordinate]MergeRegion),
		byAnchor: make(map[Coordinate]MergeRegion),
		feed:     feed,
	}
}

// Merge registers r as a merged region. It fails with ErrMergeTooSmall when
// r covers fewer than two cells and with ErrMergeOverlap when any covered
// coordinate already belongs to a region.
func (m *MergedCellRegistry) Merge(r Range) (MergeRegion, error) {
	if r.CellCount() < 2 {
		return MergeRegion{}, ErrMergeTooSmall
	}
	for _, c := range r.Coordinates() {
		if _, exists := m.byCoord[c]; exists {
			return MergeRegion{}, ErrMergeOverlap
		}
	}
	region := MergeRegion{Range: r}
	for _, c := range r.Coordinates() {
		m.byCoord[c] = region
	}
	m.byAnchor[region.Anchor()] = region
	if m.feed != nil {
		m.feed.publish(ChangeEvent{Kind: ChangeMerge, Range: r})
	}
	return region, nil
}

// Unmerge removes the region covering c from both indices. It reports
// whether a region was removed; an uncovered coordinate is a no-op.
func (m *MergedCellRegistry) Unmerge(c Coordinate) bool {
	region, ok := m.byCoord[c]
	if !ok {
		return false
	}
	for _, covered := range region.Range.Coordinates() {
		delete(m.byCoord, covered)
	}
	delete(m.byAnchor, region.Anchor())
	if m.feed != nil {
		m.feed.publish(ChangeEvent{Kind: ChangeUnmerge, Range: region.Range})
	}
	return true
}

// UnmergeInRange removes every region intersecting r and returns how many
// were removed.
func (m *MergedCellRegistry) UnmergeInRange(r Range) int {
	removed := 0
	for _, region := range m.RegionsInRange(r) {
		if m.Unmerge(region.Anchor()) {
			removed++
		}
	}
	return removed
}

// RegionAt returns the region covering c.
func (m *MergedCellRegistry) RegionAt(c Coordinate) (MergeRegion, bool) {
	region, ok := m.byCoord[c]
	return region, ok
}

// RegionsInRange returns every region whose range intersects r, not only
// regions fully contained in it. Replication uses this to clear stale
// merges before re-tiling.
func (m *MergedCellRegistry) RegionsInRange(r Range) []MergeRegion {
	var regions []MergeRegion
	for _, region := range m.byAnchor {
		if region.Range.Intersects(r) {
			regions = append(regions, region)
		}
	}
	sortRegions(regions)
	return regions
}

// Regions returns all registered regions in row-major anchor order.
func (m *MergedCellRegistry) Regions() []MergeRegion {
	regions := make([]MergeRegion, 0, len(m.byAnchor))
	for _, region := range m.byAnchor {
		regions = append(regions, region)
	}
	sortRegions(regions)
	return regions
}

// Count returns the number of registered regions.
func (m *MergedCellRegistry) Count() int { return len(m.byAnchor) }

func sortRegions(regions []MergeRegion) {
	sort.Slice(regions, func(i, j int) bool {
		a, b := regions[i].Anchor(), regions[j].Anchor()
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
}
