package family

import "time"

// Stats summarises a dataset for the statistics page.
type Stats struct {
	Members      int     `json:"members"`
	Marriages    int     `json:"marriages"`
	ChildLinks   int     `json:"child_links"`
	Disconnected int     `json:"disconnected"`
	Living       int     `json:"living"`
	Oldest       *Ranked `json:"oldest,omitempty"`
	Youngest     *Ranked `json:"youngest,omitempty"`
}

// Ranked pairs a person with their computed age.
type Ranked struct {
	Person Person `json:"person"`
	Age    int    `json:"age"`
}

// Summarize computes statistics for d as of now. People without a known age
// are ignored for the oldest/youngest ranking, and ties keep the person that
// appears first.
func Summarize(d Dataset, now time.Time) Stats {
	s := Stats{
		Members:    len(d.People),
		Marriages:  len(d.Marriages),
		ChildLinks: len(d.Children),
	}

	connected := make(map[int64]struct{}, len(d.People))
	for _, m := range d.Marriages {
		for _, p := range m.Partners() {
			if p != nil {
				connected[*p] = struct{}{}
			}
		}
	}
	for _, c := range d.Children {
		connected[c.ChildID] = struct{}{}
	}

	for _, p := range d.People {
		if _, ok := connected[p.ID]; !ok {
			s.Disconnected++
		}
		if !p.IsDeceased() {
			s.Living++
		}
		age, ok := p.Age(now)
		if !ok || age <= 0 {
			continue
		}
		if s.Oldest == nil || age > s.Oldest.Age {
			s.Oldest = &Ranked{Person: p, Age: age}
		}
		if s.Youngest == nil || age < s.Youngest.Age {
			s.Youngest = &Ranked{Person: p, Age: age}
		}
	}
	return s
}
