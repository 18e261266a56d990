package creator

import (
	"testing"

	"meal-planner/internal/core/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddIsIdempotent(t *testing.T) {
	store := NewStore()

	first := store.Add("u1", source.SourceYouTube, "UC1", "Cook", "https://youtube.com/@cook")
	second := store.Add("u1", source.SourceYouTube, "UC1", "Cook", "https://youtube.com/@cook")

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.ListByUser("u1"), 1)

	// Same creator for another user is a distinct entry.
	other := store.Add("u2", source.SourceYouTube, "UC1", "Cook", "")
	assert.NotEqual(t, first.ID, other.ID)
}

func TestStoreListByUserOrder(t *testing.T) {
	store := NewStore()
	store.Add("u1", source.SourceYouTube, "UC1", "First", "")
	store.Add("u1", source.SourceInstagram, "chef_two", "Second", "")

	list := store.ListByUser("u1")
	require.Len(t, list, 2)
	assert.Equal(t, "First", list[0].CreatorName)
	assert.Equal(t, "Second", list[1].CreatorName)

	assert.Empty(t, store.ListByUser("unknown"))
}

func TestStoreDelete(t *testing.T) {
	store := NewStore()
	c := store.Add("u1", source.SourceYouTube, "UC1", "Cook", "")

	assert.False(t, store.Delete("u2", c.ID), "cannot delete another user's creator")
	assert.True(t, store.Delete("u1", c.ID))
	assert.False(t, store.Delete("u1", c.ID))
	assert.Nil(t, store.Get(c.ID))
	assert.Empty(t, store.ListByUser("u1"))
}

func TestParseCreatorURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    ParsedCreator
		wantErr bool
	}{
		{
			name: "youtube handle",
			url:  "https://www.youtube.com/@somechef",
			want: ParsedCreator{Source: source.SourceYouTube, ID: "@somechef", Name: "somechef"},
		},
		{
			name: "youtube channel id",
			url:  "https://youtube.com/channel/UCabc123",
			want: ParsedCreator{Source: source.SourceYouTube, ID: "UCabc123", Name: "UCabc123"},
		},
		{
			name: "youtube legacy custom",
			url:  "https://www.youtube.com/c/SomeChef",
			want: ParsedCreator{Source: source.SourceYouTube, ID: "SomeChef", Name: "SomeChef"},
		},
		{
			name: "instagram profile",
			url:  "https://www.instagram.com/some.chef/",
			want: ParsedCreator{Source: source.SourceInstagram, ID: "some.chef", Name: "some.chef"},
		},
		{
			name:    "instagram post is not a profile",
			url:     "https://www.instagram.com/p/Cxyz/",
			wantErr: true,
		},
		{
			name:    "unsupported host",
			url:     "https://www.tiktok.com/@someone",
			wantErr: true,
		},
		{
			name:    "empty path",
			url:     "https://youtube.com/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCreatorURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
