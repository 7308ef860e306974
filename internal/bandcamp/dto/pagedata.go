package dto

// FanBlob is the data-blob attribute of a fan page's #pagedata element.
type FanBlob struct {
	FanData            FanData                                `json:"fan_data"`
	ItemCache          ItemCache                              `json:"item_cache"`
	CollectionData     SectionData                            `json:"collection_data"`
	WishlistData       SectionData                            `json:"wishlist_data"`
	HiddenData         SectionData                            `json:"hidden_data"`
	FollowersData      SectionData                            `json:"followers_data"`
	FollowingBandsData SectionData                            `json:"following_bands_data"`
	FollowingFansData  SectionData                            `json:"following_fans_data"`
	Tracklists         map[string]map[string][]TracklistEntry `json:"tracklists"`
}

// FanData describes the profile owner.
type FanData struct {
	FanID                Number `json:"fan_id"`
	Name                 string `json:"name"`
	Username             string `json:"username"`
	TrackpipeURL         string `json:"trackpipe_url"`
	Location             string `json:"location"`
	WebsiteURL           string `json:"website_url"`
	Bio                  string `json:"bio"`
	Photo                *Photo `json:"photo"`
	FollowersCount       Number `json:"followers_count"`
	FollowingBandsCount  Number `json:"following_bands_count"`
	FollowingFansCount   Number `json:"following_fans_count"`
	FollowingGenresCount Number `json:"following_genres_count"`
	IsOwnPage            bool   `json:"is_own_page"`
}

// Photo references an image by id.
type Photo struct {
	ImageID Number `json:"image_id"`
}

// ItemCache holds the rows referenced by each section's sequence.
type ItemCache struct {
	Collection     map[string]CollectionRow `json:"collection"`
	Wishlist       map[string]CollectionRow `json:"wishlist"`
	Hidden         map[string]CollectionRow `json:"hidden"`
	Followers      map[string]FollowRow     `json:"followers"`
	FollowingBands map[string]FollowRow     `json:"following_bands"`
	FollowingFans  map[string]FollowRow     `json:"following_fans"`
}

// SectionData is the paging state of one preloaded fan section.
type SectionData struct {
	Sequence  []string `json:"sequence"`
	LastToken string   `json:"last_token"`
	ItemCount Number   `json:"item_count"`
}
