package models

import (
	"encoding/json"

	"hirefeed/internal/keywords"
)

type PublicMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

type Tweet struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	AuthorID      string         `json:"author_id,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty"`
	PublicMetrics *PublicMetrics `json:"public_metrics,omitempty"`
}

type SearchMeta struct {
	ResultCount int    `json:"result_count"`
	NewestID    string `json:"newest_id,omitempty"`
	OldestID    string `json:"oldest_id,omitempty"`
	NextToken   string `json:"next_token,omitempty"`
}

// APIError is a partial error returned next to data, or a problem body
// returned with a non-200 status.
type APIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
	Status int    `json:"status,omitempty"`
}

type SearchResponse struct {
	Data   []Tweet    `json:"data"`
	Meta   SearchMeta `json:"meta"`
	Errors []APIError `json:"errors,omitempty"`
}

func (r *SearchResponse) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}

func (r *SearchResponse) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, r)
}

func (t *Tweet) ToJobPosting(terms []string) *JobPosting {
	return &JobPosting{
		TweetID:   t.ID,
		Content:   t.Text,
		Author:    t.AuthorID,
		URL:       StatusURL(t.ID),
		CreatedAt: t.CreatedAt,
		Keywords:  keywords.Tag(t.Text, terms),
	}
}
