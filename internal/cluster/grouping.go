package cluster

import (
	"sort"
	"time"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/shared/geo"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/trip"
)

// buildClusters greedily groups items by date proximity and, when items are
// located, spatial proximity. Pure: same items and clock, same clusters.
func buildClusters(items []Item, cfg Config, now time.Time) []Cluster {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var clusters []Cluster
	for _, it := range sorted {
		placed := false
		for i := range clusters {
			if clusterAccepts(&clusters[i], it, cfg) {
				clusterAdd(&clusters[i], it)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, Cluster{
				Items:     []Item{it},
				StartDate: it.Date,
				EndDate:   it.Date,
			})
		}
	}

	var kept []Cluster
	for _, c := range clusters {
		if len(c.Items) < 2 {
			continue
		}
		if isStaleSingleDay(c, cfg, now) {
			continue
		}
		kept = append(kept, finalizeCluster(c))
	}
	return kept
}

// clusterAccepts applies the adaptive date window: short clusters stay
// tight (±DateSlackDays), longer ones may absorb more distant dates
// (±WideSlackDays). Location must also fit: an unlocated item only joins a
// fully unlocated cluster, a located item must be near some located member.
func clusterAccepts(c *Cluster, it Item, cfg Config) bool {
	slackDays := cfg.DateSlackDays
	if c.EndDate.Sub(c.StartDate) > time.Duration(cfg.DateSlackDays)*24*time.Hour {
		slackDays = cfg.WideSlackDays
	}
	slack := time.Duration(slackDays) * 24 * time.Hour
	if it.Date.Before(c.StartDate.Add(-slack)) || it.Date.After(c.EndDate.Add(slack)) {
		return false
	}

	if !it.HasLocation {
		return !clusterHasLocation(c)
	}
	for _, member := range c.Items {
		if member.HasLocation && geo.WithinKm(member.Lat, member.Lng, it.Lat, it.Lng, cfg.ClusterProximityKm) {
			return true
		}
	}
	return false
}

func clusterAdd(c *Cluster, it Item) {
	c.Items = append(c.Items, it)
	if it.Date.Before(c.StartDate) {
		c.StartDate = it.Date
	}
	if it.Date.After(c.EndDate) {
		c.EndDate = it.Date
	}
}

func clusterHasLocation(c *Cluster) bool {
	for _, it := range c.Items {
		if it.HasLocation {
			return true
		}
	}
	return false
}

func isStaleSingleDay(c Cluster, cfg Config, now time.Time) bool {
	if calendarDays(c.StartDate, c.EndDate) > 0 {
		return false
	}
	newest := c.Items[0].Date
	for _, it := range c.Items[1:] {
		if it.Date.After(newest) {
			newest = it.Date
		}
	}
	return now.Sub(newest) > time.Duration(cfg.StaleSingleDayDays)*24*time.Hour
}

func finalizeCluster(c Cluster) Cluster {
	for _, it := range c.Items {
		if it.Kind == trip.KindActivity {
			c.ActivityCount++
			c.TotalDistanceM += it.DistanceM
		} else {
			c.SpotCount++
		}
	}
	c.Name = clusterName(c.StartDate, c.EndDate)
	return c
}

func clusterName(start, end time.Time) string {
	switch days := calendarDays(start, end); {
	case days == 0:
		return "Day Trip — " + start.Format("Jan 2, 2006")
	case days <= 2:
		return "Weekend Trip — " + start.Format("Jan 2, 2006")
	default:
		return "Trip " + start.Format("Jan 2") + " – " + end.Format("Jan 2, 2006")
	}
}

// calendarDays counts whole calendar days between two dates in UTC; same
// day is 0.
func calendarDays(start, end time.Time) int {
	s, e := start.UTC(), end.UTC()
	sd := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	ed := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)
	return int(ed.Sub(sd).Hours() / 24)
}
