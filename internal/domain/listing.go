package domain

import "fmt"

// RawListing is one marketplace offer row as extracted by a PageFetcher.
// SleeveCondition is nil when the row carries no sleeve information.
type RawListing struct {
	ReleaseID       int64   `json:"release_id"`
	MediaCondition  string  `json:"media_condition"`
	SleeveCondition *string `json:"sleeve_condition,omitempty"`
	Price           string  `json:"price"`
	PriceNoShipping string  `json:"price_no_shipping"`
	URL             string  `json:"url"`
}

// Listing is a parsed marketplace offer scraped for one want-list item.
type Listing struct {
	ReleaseID       int64     `json:"release_id"`
	Media           Condition `json:"media_condition"`
	Sleeve          Condition `json:"sleeve_condition"`
	Price           Price     `json:"price"`
	PriceNoShipping Price     `json:"price_no_shipping"`
	URL             string    `json:"url"`
	ItemID          int64     `json:"item_id"`
}

// ParseListing converts a raw row into a Listing bound to item. Rows without
// sleeve information get the "No Cover" grade. Any grade or price that does
// not parse is returned as an error; callers drop such rows.
func ParseListing(raw RawListing, item WantlistItem) (Listing, error) {
	media, err := ParseCondition(raw.MediaCondition)
	if err != nil {
		return Listing{}, fmt.Errorf("media condition: %w", err)
	}

	sleeveText := "No Cover"
	if raw.SleeveCondition != nil {
		sleeveText = *raw.SleeveCondition
	}
	sleeve, err := ParseCondition(sleeveText)
	if err != nil {
		return Listing{}, fmt.Errorf("sleeve condition: %w", err)
	}

	price, err := ParsePrice(raw.Price)
	if err != nil {
		return Listing{}, fmt.Errorf("price: %w", err)
	}
	noShipping, err := ParsePrice(raw.PriceNoShipping)
	if err != nil {
		return Listing{}, fmt.Errorf("price without shipping: %w", err)
	}

	return Listing{
		ReleaseID:       raw.ReleaseID,
		Media:           media,
		Sleeve:          sleeve,
		Price:           price,
		PriceNoShipping: noShipping,
		URL:             raw.URL,
		ItemID:          item.ID,
	}, nil
}

// GoodOffer pairs a matching listing with the want-list item it was scraped
// for and the ceiling it was checked against.
type GoodOffer struct {
	Item    WantlistItem `json:"item"`
	Listing Listing      `json:"listing"`
	Ceiling Price        `json:"ceiling"`
}
