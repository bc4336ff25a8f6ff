package domain

import "strings"

// Article is a news item as delivered by the home feed.
// Every field except Title is optional; an empty string means "absent".
type Article struct {
	ID               string `json:"id,omitempty" yaml:"id,omitempty"`
	Title            string `json:"title" yaml:"title"`
	PublishedTime    string `json:"published_time,omitempty" yaml:"published_time,omitempty"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	ImageDescription string `json:"image_description,omitempty" yaml:"image_description,omitempty"`
	MediaCount       *int   `json:"media_count,omitempty" yaml:"media_count,omitempty"`
	Image            string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Identifier returns the key a bookmark for this article is stored under.
//
// An explicit ID wins. Otherwise the key is derived from the title and the
// publish time ("Breaking news" + "10:00" -> "Breaking_news_10:00"), so the
// same article value always maps to the same key even without a stored ID.
func (a Article) Identifier() string {
	if a.ID != "" {
		return a.ID
	}
	return DeriveIdentifier(a.Title, a.PublishedTime)
}

// DeriveIdentifier is the fallback key policy: title + "_" + publishedTime,
// spaces replaced by underscores.
func DeriveIdentifier(title, publishedTime string) string {
	return strings.ReplaceAll(title+"_"+publishedTime, " ", "_")
}
