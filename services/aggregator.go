package services

import "seatmap-scraper/models"

// UnknownSection buckets available seats that carry no section
const UnknownSection = "Unknown"

// Summarize computes the summary of a seat collection from scratch. Price and
// section values are grouped verbatim: "63.54" and 63.54 are different prices,
// "A" and "a" different sections. Groups keep first-seen order.
func Summarize(seats []models.Seat) models.Summary {
	summary := models.Summary{
		TotalSeats:  len(seats),
		PriceRanges: make([]models.PriceRange, 0),
		Sections:    make(models.SectionCounts, 0),
	}

	priceIdx := make(map[string]int)
	sectionIdx := make(map[string]int)

	for _, s := range seats {
		if !s.Available {
			continue
		}
		summary.AvailableSeats++

		key := s.Price.Key()
		if i, ok := priceIdx[key]; ok {
			summary.PriceRanges[i].Count++
		} else {
			priceIdx[key] = len(summary.PriceRanges)
			summary.PriceRanges = append(summary.PriceRanges, models.PriceRange{Price: s.Price, Count: 1})
		}

		section := models.Deref(s.Section, UnknownSection)
		if i, ok := sectionIdx[section]; ok {
			summary.Sections[i].Count++
		} else {
			sectionIdx[section] = len(summary.Sections)
			summary.Sections = append(summary.Sections, models.SectionCount{Name: section, Count: 1})
		}
	}

	summary.UnavailableSeats = summary.TotalSeats - summary.AvailableSeats
	return summary
}
