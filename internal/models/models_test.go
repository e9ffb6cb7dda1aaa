package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{
  "data": [
    {
      "id": "1790000000000000001",
      "text": "We're hiring a backend engineer, remote job!",
      "author_id": "42",
      "created_at": "2024-05-13T10:00:00.000Z",
      "public_metrics": {"retweet_count": 3, "reply_count": 1, "like_count": 9, "quote_count": 0}
    },
    {"id": "1790000000000000002", "text": "open roles, see link"}
  ],
  "meta": {"result_count": 2, "newest_id": "1790000000000000001", "oldest_id": "1790000000000000002"}
}`

func TestSearchResponse_Decode(t *testing.T) {
	var resp SearchResponse
	require.NoError(t, json.Unmarshal([]byte(searchBody), &resp))

	require.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Meta.ResultCount)
	assert.Equal(t, "42", resp.Data[0].AuthorID)
	require.NotNil(t, resp.Data[0].PublicMetrics)
	assert.Equal(t, 9, resp.Data[0].PublicMetrics.LikeCount)
	assert.Nil(t, resp.Data[1].PublicMetrics)
}

func TestTweet_ToJobPosting(t *testing.T) {
	var resp SearchResponse
	require.NoError(t, json.Unmarshal([]byte(searchBody), &resp))
	terms := []string{"hiring", "job opening", "we're hiring", "remote job"}

	first := resp.Data[0].ToJobPosting(terms)
	assert.Equal(t, &JobPosting{
		TweetID:   "1790000000000000001",
		Content:   "We're hiring a backend engineer, remote job!",
		Author:    "42",
		URL:       "https://twitter.com/i/status/1790000000000000001",
		CreatedAt: "2024-05-13T10:00:00.000Z",
		Keywords:  "hiring,we're hiring,remote job",
	}, first)

	second := resp.Data[1].ToJobPosting(terms)
	assert.Empty(t, second.Author)
	assert.Empty(t, second.CreatedAt)
	assert.Equal(t, "hiring,job opening,we're hiring,remote job", second.Keywords)
}

func TestSearchResponse_BinaryRoundTrip(t *testing.T) {
	in := &SearchResponse{Data: []Tweet{{ID: "1", Text: "hiring"}}, Meta: SearchMeta{ResultCount: 1}}

	data, err := in.MarshalBinary()
	require.NoError(t, err)

	out := &SearchResponse{}
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, in, out)
}
