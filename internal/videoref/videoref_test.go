package videoref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    VideoRef
		wantErr bool
	}{
		{
			name: "watch URL",
			url:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "watch URL without www",
			url:  "https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "watch URL without scheme",
			url:  "youtube.com/watch?v=dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "shortened URL",
			url:  "https://youtu.be/dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "shortened URL with query",
			url:  "https://youtu.be/dQw4w9WgXcQ?si=abcdef",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "id with dash and underscore",
			url:  "https://youtu.be/a-b_c-d_e-f",
			want: "a-b_c-d_e-f",
		},
		{
			name: "only the first 11 characters are taken",
			url:  "https://youtu.be/dQw4w9WgXcQextra",
			want: "dQw4w9WgXcQ",
		},
		{
			name:    "id too short",
			url:     "https://youtu.be/dQw4w9W",
			wantErr: true,
		},
		{
			name:    "missing host token",
			url:     "https://example.com/dQw4w9WgXcQ",
			wantErr: true,
		},
		{
			name:    "embed URL is not supported",
			url:     "https://www.youtube.com/embed/dQw4w9WgXcQ",
			wantErr: true,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidReference)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_SameVideoSameRef(t *testing.T) {
	watch, err := Resolve("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)
	short, err := Resolve("https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, watch, short)
	assert.Equal(t, watch.CacheKey(), short.CacheKey())
}

func TestVideoRef_CacheKey(t *testing.T) {
	assert.Equal(t, "generatedNotes:dQw4w9WgXcQ", VideoRef("dQw4w9WgXcQ").CacheKey())
}

func TestVideoRef_WatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", VideoRef("dQw4w9WgXcQ").WatchURL())
}
