package attendance

import "sort"

// LectureCount is one chart point: how many distinct students were present at
// a given lecture of a module.
type LectureCount struct {
	Lecture int `json:"lecture"`
	Present int `json:"present"`
}

// Aggregator derives per-lecture present counts from the attendance store.
// Pure read side; it never writes.
type Aggregator struct {
	store *Store
}

// NewAggregator creates an aggregator over store.
func NewAggregator(store *Store) *Aggregator {
	return &Aggregator{store: store}
}

// PresentCountsByLecture returns one entry per lecture number that has at
// least one record for module, ascending by lecture number. The count is of
// distinct student ids. A module with no records yields an empty, non-nil
// slice so chart consumers can plot it without a special case.
func (a *Aggregator) PresentCountsByLecture(module string) ([]LectureCount, error) {
	records, err := a.store.ListForModule(module)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]map[string]struct{})
	for _, rec := range records {
		if seen[rec.Lecture] == nil {
			seen[rec.Lecture] = make(map[string]struct{})
		}
		seen[rec.Lecture][rec.StudentID] = struct{}{}
	}

	counts := make([]LectureCount, 0, len(seen))
	for lecture, students := range seen {
		counts = append(counts, LectureCount{Lecture: lecture, Present: len(students)})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Lecture < counts[j].Lecture })
	return counts, nil
}
