package models

const (
	InventoryStatusOutOfStock = "out_of_stock"
	InventoryStatusLowStock   = "low_stock"

	ChannelEmail   = "email"
	ChannelSocial  = "social"
	ChannelSearch  = "search"
	ChannelDisplay = "display"
	ChannelEvents  = "events"

	TopicRfmScores      = "rfm_scores"
	TopicBestSellers    = "best_sellers"
	TopicInventory      = "inventory_alerts"
	TopicMarketingROI   = "marketing_roi"
	TopicGenres         = "genre_performance"
	TopicSegmentSummary = "segment_summary"

	// DateLayout is the on-disk format for DATE columns.
	DateLayout = "2006-01-02"
)

var MarketingChannels = []string{ChannelEmail, ChannelSocial, ChannelSearch, ChannelDisplay, ChannelEvents}
