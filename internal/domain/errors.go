package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSourceUnavailable is returned when a source answers with a non-200 status or not at all
	ErrSourceUnavailable = errors.New("price source request failed")

	// ErrRateLimited is returned when a source answers 429
	ErrRateLimited = errors.New("rate limited by source")

	// ErrScrapingDisabled is returned when real fetching is switched off
	ErrScrapingDisabled = errors.New("real scraping disabled")

	// ErrNoContainers is returned when no container selector matched the page
	ErrNoContainers = errors.New("no product containers matched")

	// ErrNoOffers is returned when containers matched but none yielded a name and a price
	ErrNoOffers = errors.New("no offers extracted")
)
