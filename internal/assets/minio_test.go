package assets

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_objectKey(t *testing.T) {
	testCases := []struct {
		name        string
		folder      string
		contentType string
		wantPrefix  string
		wantSuffix  string
	}{
		{
			name:        "folder and known content type",
			folder:      "products",
			contentType: "image/png",
			wantPrefix:  "products/",
			wantSuffix:  ".png",
		},
		{
			name:        "folder with surrounding slashes is trimmed",
			folder:      "/products/",
			contentType: "image/jpeg",
			wantPrefix:  "products/",
			wantSuffix:  ".jpg",
		},
		{
			name:        "empty folder produces bare key",
			folder:      "",
			contentType: "image/webp",
			wantPrefix:  "",
			wantSuffix:  ".webp",
		},
		{
			name:        "unknown content type has no extension",
			folder:      "products",
			contentType: "application/octet-stream",
			wantPrefix:  "products/",
			wantSuffix:  "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			key := objectKey(tc.folder, tc.contentType)

			// then
			assert.True(t, strings.HasPrefix(key, tc.wantPrefix), "key %q should start with %q", key, tc.wantPrefix)
			assert.True(t, strings.HasSuffix(key, tc.wantSuffix), "key %q should end with %q", key, tc.wantSuffix)

			raw := strings.TrimSuffix(strings.TrimPrefix(key, tc.wantPrefix), tc.wantSuffix)
			_, err := uuid.Parse(raw)
			require.NoError(t, err, "the key body must be a uuid")
		})
	}
}

func Test_objectKey_IsUniquePerCall(t *testing.T) {
	assert.NotEqual(t, objectKey("products", "image/png"), objectKey("products", "image/png"))
}

func Test_extensionFor(t *testing.T) {
	testCases := []struct {
		contentType string
		want        string
	}{
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"image/jpeg", ".jpg"},
		{"image/jpg", ".jpg"},
		{"text/plain", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.contentType, func(t *testing.T) {
			assert.Equal(t, tc.want, extensionFor(tc.contentType))
		})
	}
}
