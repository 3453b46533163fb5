package app

import (
	"strconv"
	"strings"

	"hotel_booking/internal/domain"
)

/********** alias registry (single source of truth) **********/

// hotelAliases lists the keys a fixture may use for each hotel field, in
// order of preference. Dot paths address nested maps.
var hotelAliases = map[string][]string{
	"id":          {"id", "hotel_id", "hotelId", "_id"},
	"owner":       {"userId", "user_id", "owner_id", "ownerId"},
	"name":        {"name", "hotel_name", "title"},
	"city":        {"city", "address.city", "location.city"},
	"country":     {"country", "address.country", "location.country", "country_code"},
	"description": {"description", "summary", "markdown_description"},
	"type":        {"type", "hotel_type", "category"},
	"price":       {"pricePerNight", "price_per_night", "price", "rate"},
	"rating":      {"starRating", "rating", "stars", "star_rating"},
	"adults":      {"adultCount", "adult_count", "max_adults"},
	"children":    {"childCount", "childrenCount", "children_count", "max_children"},
	"facilities":  {"facilities", "amenities"},
	"images":      {"imageUrls", "imageURL", "image_urls", "images", "photos"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstString: first non-empty string (or integer id) for a named alias set.
func firstString(m map[string]any, key string) string {
	for _, p := range hotelAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case int:
			return strconv.Itoa(v)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// firstFloat: number for an alias set (float64/int/string like "8,0").
func firstFloat(m map[string]any, key string) (float64, bool) {
	for _, p := range hotelAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func firstInt(m map[string]any, key string) int {
	if f, ok := firstFloat(m, key); ok {
		return int(f)
	}
	return 0
}

// firstStrings: accept []any with either strings or {url/src/name}.
func firstStrings(m map[string]any, key string) []string {
	for _, p := range hotelAliases[key] {
		raw, ok := lookupAny(m, p).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, t)
				}
			case map[string]any:
				for _, k := range []string{"url", "src", "name"} {
					if u, ok := t[k].(string); ok && u != "" {
						out = append(out, u)
						break
					}
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

/********** hotel mapper **********/

// mapHotel converts a loosely shaped fixture record into a hotel. The result
// is not validated; see validateHotel.
func mapHotel(p map[string]any) domain.Hotel {
	price, _ := firstFloat(p, "price")
	return domain.Hotel{
		ID:            firstString(p, "id"),
		OwnerID:       firstString(p, "owner"),
		Name:          firstString(p, "name"),
		City:          firstString(p, "city"),
		Country:       firstString(p, "country"),
		Description:   firstString(p, "description"),
		Type:          firstString(p, "type"),
		AdultCount:    firstInt(p, "adults"),
		ChildrenCount: firstInt(p, "children"),
		Facilities:    firstStrings(p, "facilities"),
		PricePerNight: price,
		Rating:        firstInt(p, "rating"),
		ImageURLs:     firstStrings(p, "images"),
	}
}

func validateHotel(h domain.Hotel) error {
	switch {
	case h.Name == "":
		return domain.Invalid("hotel name is required")
	case h.City == "" || h.Country == "":
		return domain.Invalid("hotel city and country are required")
	case h.PricePerNight <= 0:
		return domain.Invalid("hotel price per night must be positive")
	case h.Rating < 0 || h.Rating > 5:
		return domain.Invalid("hotel star rating must be between 0 and 5")
	case h.AdultCount < 0 || h.ChildrenCount < 0:
		return domain.Invalid("hotel guest capacity must not be negative")
	}
	return nil
}
