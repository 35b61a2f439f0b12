// Package analytics computes daily and weekly nutrition aggregates from meal records.
//
// Every function is pure. Day and week boundaries are taken in the location of
// the reference time passed by the caller, so callers control the time zone.
package analytics

import (
	"fmt"
	"time"

	"github.com/pageza/cosmic-nutrition/backend/internal/models"
)

const (
	dayKeyLayout = "2006-01-02"

	// DefaultTrendDays is the length of the daily trend series.
	DefaultTrendDays = 7
	// DefaultTrendWeeks is the length of the weekly trend series.
	DefaultTrendWeeks = 4
)

// Totals is a sum of calories and macros.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Macros is an average of protein, carbs and fat.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// Bucket is the aggregate of one day or one week.
type Bucket struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Start    time.Time `json:"start"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Fat      float64   `json:"fat"`
}

func (b *Bucket) add(m models.Meal) {
	t := mealTotals(m)
	b.Calories += t.Calories
	b.Protein += t.Protein
	b.Carbs += t.Carbs
	b.Fat += t.Fat
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return addDays(day, -offset)
}

// addDays moves by calendar days so DST transitions keep midnight aligned.
func addDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, 0, 0, 0, 0, t.Location())
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// mealTotals uses the meal's reported total calories and sums macros across its items.
func mealTotals(m models.Meal) Totals {
	t := Totals{Calories: m.TotalCalories}
	for _, item := range m.Items {
		t.Protein += item.Protein
		t.Carbs += item.Carbs
		t.Fat += item.Fat
	}
	return t
}

func sumWindow(meals []models.Meal, start, end time.Time) (Totals, map[string]struct{}) {
	var sum Totals
	days := make(map[string]struct{})
	for _, m := range meals {
		if !inWindow(m.Date, start, end) {
			continue
		}
		t := mealTotals(m)
		sum.Calories += t.Calories
		sum.Protein += t.Protein
		sum.Carbs += t.Carbs
		sum.Fat += t.Fat
		days[m.Date.In(start.Location()).Format(dayKeyLayout)] = struct{}{}
	}
	return sum, days
}

// DailyTotals sums the meals whose date falls on day's calendar day.
func DailyTotals(meals []models.Meal, day time.Time) Totals {
	start := StartOfDay(day)
	sum, _ := sumWindow(meals, start, addDays(start, 1))
	return sum
}

// weekWindow is the seven calendar days ending with ref's day.
func weekWindow(ref time.Time) (time.Time, time.Time) {
	today := StartOfDay(ref)
	return addDays(today, -6), addDays(today, 1)
}

// WeeklyTotal sums the meals in the seven calendar days ending with ref's day.
func WeeklyTotal(meals []models.Meal, ref time.Time) Totals {
	start, end := weekWindow(ref)
	sum, _ := sumWindow(meals, start, end)
	return sum
}

// WeeklyAverage averages the seven days ending with ref's day over the days
// that have at least one meal. With no meals the result is all zeros.
func WeeklyAverage(meals []models.Meal, ref time.Time) Totals {
	start, end := weekWindow(ref)
	sum, days := sumWindow(meals, start, end)

	den := float64(len(days))
	if den == 0 {
		den = 1
	}
	return Totals{
		Calories: sum.Calories / den,
		Protein:  sum.Protein / den,
		Carbs:    sum.Carbs / den,
		Fat:      sum.Fat / den,
	}
}

// DailyTrend returns exactly days buckets, oldest first, ending with now's day.
// Days without meals are zero buckets. days <= 0 means DefaultTrendDays.
func DailyTrend(meals []models.Meal, now time.Time, days int) []Bucket {
	if days <= 0 {
		days = DefaultTrendDays
	}

	today := StartOfDay(now)
	first := addDays(today, -(days - 1))
	buckets := make([]Bucket, days)
	index := make(map[string]int, days)
	for i := range buckets {
		d := addDays(first, i)
		key := d.Format(dayKeyLayout)
		buckets[i] = Bucket{Key: key, Label: d.Format("Mon"), Start: d}
		index[key] = i
	}

	loc := now.Location()
	for _, m := range meals {
		if i, ok := index[m.Date.In(loc).Format(dayKeyLayout)]; ok {
			buckets[i].add(m)
		}
	}
	return buckets
}

// WeeklyTrend returns exactly weeks Monday-to-Sunday buckets, oldest first,
// the last one being the current partial week. weeks <= 0 means DefaultTrendWeeks.
func WeeklyTrend(meals []models.Meal, now time.Time, weeks int) []Bucket {
	if weeks <= 0 {
		weeks = DefaultTrendWeeks
	}

	current := StartOfWeek(now)
	first := addDays(current, -7*(weeks-1))
	buckets := make([]Bucket, weeks)
	for i := range buckets {
		start := addDays(first, 7*i)
		_, isoWeek := start.ISOWeek()
		buckets[i] = Bucket{
			Key:   start.Format(dayKeyLayout),
			Label: fmt.Sprintf("W%d", isoWeek),
			Start: start,
		}
	}

	end := addDays(current, 7)
	for _, m := range meals {
		if !inWindow(m.Date, first, end) {
			continue
		}
		for i := range buckets {
			if inWindow(m.Date, buckets[i].Start, addDays(buckets[i].Start, 7)) {
				buckets[i].add(m)
				break
			}
		}
	}
	return buckets
}

// TrendAverage averages macros over the buckets that recorded any calories.
func TrendAverage(buckets []Bucket) Macros {
	var sum Macros
	active := 0
	for _, b := range buckets {
		sum.Protein += b.Protein
		sum.Carbs += b.Carbs
		sum.Fat += b.Fat
		if b.Calories > 0 {
			active++
		}
	}
	if active == 0 {
		active = 1
	}
	den := float64(active)
	return Macros{Protein: sum.Protein / den, Carbs: sum.Carbs / den, Fat: sum.Fat / den}
}

// GroupByCategory partitions meals by category. Every known category is
// present in the result; meals with an unknown category are dropped.
func GroupByCategory(meals []models.Meal) map[models.Category][]models.Meal {
	groups := make(map[models.Category][]models.Meal, len(models.Categories))
	for _, c := range models.Categories {
		groups[c] = []models.Meal{}
	}
	for _, m := range meals {
		if !m.Category.Valid() {
			continue
		}
		groups[m.Category] = append(groups[m.Category], m)
	}
	return groups
}

// GroupByDay partitions meals by calendar day in loc, keyed YYYY-MM-DD.
// Input order is preserved within each day.
func GroupByDay(meals []models.Meal, loc *time.Location) map[string][]models.Meal {
	groups := make(map[string][]models.Meal)
	for _, m := range meals {
		key := m.Date.In(loc).Format(dayKeyLayout)
		groups[key] = append(groups[key], m)
	}
	return groups
}
